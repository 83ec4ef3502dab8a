package server

import (
	"github.com/taxmitra/grievance/internal/server/middleware"
	"github.com/taxmitra/grievance/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Grievance routes
	apiRoutes.POST("/grievances", routes.SubmitGrievanceHandler, middleware.RequirePermission("grievance.create"))
	apiRoutes.POST("/grievances/query", routes.QueryGrievanceHandler, middleware.RequirePermission("grievance.create"))
	apiRoutes.GET("/grievances/:id", routes.GetGrievanceHandler, middleware.RequirePermission("grievance.view"))

	// Knowledge base routes
	apiRoutes.GET("/knowledge/stats", routes.GetKnowledgeStatsHandler, middleware.RequirePermission("knowledge.view"))
}
