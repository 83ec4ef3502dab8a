package routes

import (
	"net/http"

	"github.com/taxmitra/grievance/internal/server/middleware"
	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/store"

	"github.com/labstack/echo/v4"
)

// QueryGrievanceHandler runs the full pipeline synchronously and returns
// the final response in one round trip. Suited for interactive clients
// that do not subscribe to the progress topics.
func QueryGrievanceHandler(c echo.Context) error {
	type queryGrievanceBody struct {
		Query            string `json:"query" validate:"required"`
		SelectedCategory string `json:"selected_category"`
	}

	type queryGrievanceResponse struct {
		Message        string                 `json:"message"`
		SessionID      string                 `json:"session_id,omitempty"`
		Response       *common.FinalResponse  `json:"response,omitempty"`
		Classification *common.Classification `json:"classification,omitempty"`
		Escalated      bool                   `json:"escalated,omitempty"`
		Errors         []string               `json:"errors,omitempty"`
		Metrics        *ai.ModelMetrics       `json:"metrics,omitempty"`
	}

	data := new(queryGrievanceBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryGrievanceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryGrievanceResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	result := app.Pipeline.Process(ctx, data.Query, "", data.SelectedCategory, nil)
	if result.Response == nil {
		logger.Error("Pipeline produced no response", "session", result.SessionID, "errors", result.Errors)
		return c.JSON(http.StatusInternalServerError, queryGrievanceResponse{
			Message: "Internal server error",
		})
	}

	status := store.SessionCompleted
	if result.EscalationRequested {
		status = store.SessionEscalated
	}
	if err := app.Sessions.CreateSession(ctx, result.SessionID, data.Query); err != nil {
		logger.Warn("Failed to record session", "session", result.SessionID, "err", err)
	} else if err := app.Sessions.CompleteSession(ctx, result.SessionID, status, result.Response, result.Errors); err != nil {
		logger.Warn("Failed to complete session record", "session", result.SessionID, "err", err)
	}

	metrics := app.AiClient.GetMetrics()
	return c.JSON(http.StatusOK, queryGrievanceResponse{
		Message:        "Grievance processed",
		SessionID:      result.SessionID,
		Response:       result.Response,
		Classification: result.Classification,
		Escalated:      result.EscalationRequested,
		Errors:         result.Errors,
		Metrics:        &metrics,
	})
}
