package routes

import (
	"net/http"

	"github.com/taxmitra/grievance/internal/server/middleware"
	"github.com/taxmitra/grievance/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetGrievanceHandler returns the persisted state of one session,
// including the final response once processing has finished.
func GetGrievanceHandler(c echo.Context) error {
	type getGrievanceParams struct {
		SessionID string `param:"id" validate:"required"`
	}

	type getGrievanceResponse struct {
		Message string         `json:"message"`
		Session *store.Session `json:"session,omitempty"`
	}

	params := new(getGrievanceParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getGrievanceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getGrievanceResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	session, err := app.Sessions.GetSession(ctx, params.SessionID)
	if err != nil {
		return c.JSON(http.StatusNotFound, getGrievanceResponse{
			Message: "Session not found",
		})
	}

	return c.JSON(http.StatusOK, getGrievanceResponse{
		Message: "Session found",
		Session: session,
	})
}
