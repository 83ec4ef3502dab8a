package pgx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/store"
)

// CreateSession inserts a new pending session row.
func (s *TaxDBStorage) CreateSession(ctx context.Context, id string, query string) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO grievance_sessions (id, query, status)
		VALUES ($1, $2, $3)
	`, id, util.SanitizePostgresText(query), store.SessionPending)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// MarkRunning flips a session to the running state.
func (s *TaxDBStorage) MarkRunning(ctx context.Context, id string) error {
	_, err := s.conn.Exec(ctx, `
		UPDATE grievance_sessions SET status = $2 WHERE id = $1
	`, id, store.SessionRunning)
	if err != nil {
		return fmt.Errorf("mark session running: %w", err)
	}
	return nil
}

// CompleteSession stores the final response, accumulated errors, and terminal
// status for a session.
func (s *TaxDBStorage) CompleteSession(
	ctx context.Context,
	id string,
	status string,
	response *common.FinalResponse,
	errs []string,
) error {
	var responseJSON []byte
	if response != nil {
		var err error
		responseJSON, err = json.Marshal(response)
		if err != nil {
			return fmt.Errorf("marshal session response: %w", err)
		}
	}

	sanitized := make([]string, len(errs))
	for i, e := range errs {
		sanitized[i] = util.SanitizePostgresText(e)
	}

	_, err := s.conn.Exec(ctx, `
		UPDATE grievance_sessions
		SET status = $2, response = $3, errors = $4, completed_at = now()
		WHERE id = $1
	`, id, status, responseJSON, sanitized)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

// GetSession loads a session row by ID. A missing row returns an error.
func (s *TaxDBStorage) GetSession(ctx context.Context, id string) (*store.Session, error) {
	var (
		session      store.Session
		responseJSON []byte
	)
	err := s.conn.QueryRow(ctx, `
		SELECT id, query, status, response, errors, created_at, completed_at
		FROM grievance_sessions
		WHERE id = $1
	`, id).Scan(
		&session.ID,
		&session.Query,
		&session.Status,
		&responseJSON,
		&session.Errors,
		&session.CreatedAt,
		&session.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if len(responseJSON) > 0 {
		var response common.FinalResponse
		if err := json.Unmarshal(responseJSON, &response); err != nil {
			return nil, fmt.Errorf("unmarshal session response: %w", err)
		}
		session.Response = &response
	}

	return &session, nil
}
