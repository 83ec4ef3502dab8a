package store

import (
	"context"
	"time"

	"github.com/taxmitra/grievance/pkg/common"
)

// Chunk is one knowledge-base passage with its retrieval metadata.
// Distance is the cosine distance to the query embedding (lower is closer).
type Chunk struct {
	ID            int64   `json:"id"`
	Content       string  `json:"content"`
	Filename      string  `json:"filename"`
	Page          *int    `json:"page,omitempty"`
	Category      string  `json:"category,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
	Distance      float64 `json:"distance"`
}

// KBStats summarizes the indexed knowledge base for the stats endpoint.
type KBStats struct {
	TotalChunks    int64    `json:"total_chunks"`
	TotalFiles     int64    `json:"total_files"`
	Categories     []string `json:"categories,omitempty"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
}

// VectorIndex is the read interface over the pre-built knowledge base.
type VectorIndex interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]Chunk, error)
	Stats(ctx context.Context) (KBStats, error)
}

// Session is the persisted processing state of one grievance.
type Session struct {
	ID          string                `json:"id"`
	Query       string                `json:"query"`
	Status      string                `json:"status"`
	Response    *common.FinalResponse `json:"response,omitempty"`
	Errors      []string              `json:"errors,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// Session status values.
const (
	SessionPending   = "pending"
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionEscalated = "escalated"
	SessionFailed    = "failed"
)

// SessionStore persists grievance sessions across the API and worker.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, query string) error
	MarkRunning(ctx context.Context, id string) error
	CompleteSession(ctx context.Context, id string, status string, response *common.FinalResponse, errs []string) error
	GetSession(ctx context.Context, id string) (*Session, error)
}
