package pgx

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/store"
)

// Search returns the limit nearest chunks by cosine distance to the query
// embedding, closest first.
func (s *TaxDBStorage) Search(
	ctx context.Context,
	embedding []float32,
	limit int,
) ([]store.Chunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, content, filename, page, category, published, embedding <=> $1 AS distance
		FROM kb_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search kb chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]store.Chunk, 0, limit)
	for rows.Next() {
		var (
			chunk     store.Chunk
			category  *string
			published *string
		)
		if err := rows.Scan(
			&chunk.ID,
			&chunk.Content,
			&chunk.Filename,
			&chunk.Page,
			&category,
			&published,
			&chunk.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan kb chunk: %w", err)
		}
		if category != nil {
			chunk.Category = *category
		}
		if published != nil {
			chunk.PublishedDate = *published
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kb chunks: %w", err)
	}

	return chunks, nil
}

// Stats counts the indexed chunks, source files, and distinct categories.
func (s *TaxDBStorage) Stats(ctx context.Context) (store.KBStats, error) {
	var stats store.KBStats

	err := s.conn.QueryRow(ctx, `
		SELECT count(*), count(DISTINCT filename) FROM kb_chunks
	`).Scan(&stats.TotalChunks, &stats.TotalFiles)
	if err != nil {
		return store.KBStats{}, fmt.Errorf("count kb chunks: %w", err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT category FROM kb_chunks
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category
	`)
	if err != nil {
		return store.KBStats{}, fmt.Errorf("query kb categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return store.KBStats{}, fmt.Errorf("scan kb category: %w", err)
		}
		stats.Categories = append(stats.Categories, category)
	}
	if err := rows.Err(); err != nil {
		return store.KBStats{}, fmt.Errorf("iterate kb categories: %w", err)
	}

	stats.EmbeddingModel = util.GetEnv("AI_EMBED_MODEL")

	return stats, nil
}
