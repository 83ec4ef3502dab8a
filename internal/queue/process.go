package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/store"
	"github.com/taxmitra/grievance/pkg/workflow"
)

// ProgressTopic is the routing key for progress events of one session.
func ProgressTopic(sessionID string) string {
	return fmt.Sprintf("grievance.%s.progress", sessionID)
}

// ResultTopic is the routing key for the final result of one session.
func ResultTopic(sessionID string) string {
	return fmt.Sprintf("grievance.%s.result", sessionID)
}

// ProcessGrievance handles one queued grievance: it runs the pipeline,
// streams progress to the session topic, persists the session outcome, and
// publishes the result. The returned error drives the retry/DLQ handling
// of the consumer.
func ProcessGrievance(
	ctx context.Context,
	ch *amqp091.Channel,
	sessions store.SessionStore,
	pipeline *workflow.Pipeline,
	msg string,
) error {
	data := new(GrievanceMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal grievance message: %w", err)
	}
	if data.SessionID == "" || data.Query == "" {
		return fmt.Errorf("grievance message missing session id or query")
	}

	if err := sessions.MarkRunning(ctx, data.SessionID); err != nil {
		logger.Warn("[Queue] Failed to mark session running", "session", data.SessionID, "err", err)
	}

	progress := func(stage string, fraction float64) {
		event, err := json.Marshal(ProgressEvent{
			SessionID: data.SessionID,
			Stage:     stage,
			Fraction:  fraction,
		})
		if err != nil {
			return
		}
		if err := PublishTopic(ch, ProgressTopic(data.SessionID), event); err != nil {
			logger.Debug("[Queue] Failed to publish progress event", "session", data.SessionID, "err", err)
		}
	}

	result := pipeline.Process(ctx, data.Query, data.SessionID, data.SelectedCategory, progress)

	status := store.SessionCompleted
	if result.EscalationRequested {
		status = store.SessionEscalated
	}

	if err := sessions.CompleteSession(ctx, data.SessionID, status, result.Response, result.Errors); err != nil {
		return fmt.Errorf("failed to persist session result: %w", err)
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal pipeline result: %w", err)
	}
	if err := PublishTopic(ch, ResultTopic(data.SessionID), resultBytes); err != nil {
		logger.Error("[Queue] Failed to publish result", "session", data.SessionID, "err", err)
	}

	logger.Info("[Queue] Grievance processed",
		"session", data.SessionID,
		"status", status,
		"duration", result.ProcessingTime,
	)

	return nil
}
