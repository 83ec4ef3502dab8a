package routes

import (
	"net/http"

	"github.com/taxmitra/grievance/internal/server/middleware"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetKnowledgeStatsHandler reports the size and shape of the indexed
// knowledge base. Counts come from the database; the embedding model and
// build timestamp come from the bundled artifact metadata when available.
func GetKnowledgeStatsHandler(c echo.Context) error {
	type knowledgeStatsResponse struct {
		Message string         `json:"message"`
		Stats   *store.KBStats `json:"stats,omitempty"`
		BuiltAt string         `json:"built_at,omitempty"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	stats, err := app.Index.Stats(ctx)
	if err != nil {
		logger.Error("Failed to load knowledge base stats", "err", err)
		return c.JSON(http.StatusInternalServerError, knowledgeStatsResponse{
			Message: "Internal server error",
		})
	}

	builtAt := ""
	if app.KBMeta != nil {
		builtAt = app.KBMeta.BuiltAt
		if stats.EmbeddingModel == "" {
			stats.EmbeddingModel = app.KBMeta.EmbeddingModel
		}
		if stats.TotalFiles == 0 {
			stats.TotalFiles = int64(app.KBMeta.TotalFiles)
		}
	}

	return c.JSON(http.StatusOK, knowledgeStatsResponse{
		Message: "Knowledge base stats",
		Stats:   &stats,
		BuiltAt: builtAt,
	})
}
