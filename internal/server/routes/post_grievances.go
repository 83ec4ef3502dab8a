package routes

import (
	"encoding/json"
	"net/http"

	"github.com/taxmitra/grievance/internal/queue"
	"github.com/taxmitra/grievance/internal/server/middleware"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/store"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SubmitGrievanceHandler accepts a grievance for asynchronous processing.
// The session ID in the response is the handle for polling and for the
// per-session progress and result topics.
func SubmitGrievanceHandler(c echo.Context) error {
	type submitGrievanceBody struct {
		Query            string `json:"query" validate:"required"`
		SelectedCategory string `json:"selected_category"`
	}

	type submitGrievanceResponse struct {
		Message       string `json:"message"`
		SessionID     string `json:"session_id,omitempty"`
		Status        string `json:"status,omitempty"`
		ProgressTopic string `json:"progress_topic,omitempty"`
		ResultTopic   string `json:"result_topic,omitempty"`
	}

	data := new(submitGrievanceBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, submitGrievanceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, submitGrievanceResponse{
			Message: "Invalid request body",
		})
	}

	sessionID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, submitGrievanceResponse{
			Message: "Internal server error",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if err := app.Sessions.CreateSession(ctx, sessionID, data.Query); err != nil {
		logger.Error("Failed to create session", "err", err)
		return c.JSON(http.StatusInternalServerError, submitGrievanceResponse{
			Message: "Internal server error",
		})
	}

	msg, err := json.Marshal(queue.GrievanceMsg{
		SessionID:        sessionID,
		Query:            data.Query,
		SelectedCategory: data.SelectedCategory,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, submitGrievanceResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, queue.GrievanceQueue, msg); err != nil {
		logger.Error("Failed to publish grievance", "session", sessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, submitGrievanceResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, submitGrievanceResponse{
		Message:       "Grievance accepted",
		SessionID:     sessionID,
		Status:        store.SessionPending,
		ProgressTopic: queue.ProgressTopic(sessionID),
		ResultTopic:   queue.ResultTopic(sessionID),
	})
}
