package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/logger"
)

// KBMetadata describes the pre-built knowledge base artifact set.
type KBMetadata struct {
	TotalFiles     int    `json:"total_files"`
	TotalChunks    int    `json:"total_chunks"`
	EmbeddingModel string `json:"embedding_model"`
	BuiltAt        string `json:"built_at,omitempty"`
}

// LoadKBMetadata downloads kb_metadata.json from the artifact bucket. A nil
// client or a missing artifact is not fatal; the caller gets nil and serves
// stats from the database alone.
func LoadKBMetadata(ctx context.Context, client *s3.Client) (*KBMetadata, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client not available")
	}

	key := util.GetEnvString("KB_METADATA_KEY", "kb_metadata.json")
	payload, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) (*[]byte, error) {
		return GetFile(ctx, client, key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load kb metadata: %w", err)
	}

	meta := new(KBMetadata)
	if err := json.Unmarshal(*payload, meta); err != nil {
		return nil, fmt.Errorf("failed to parse kb metadata: %w", err)
	}

	logger.Info("[Storage] knowledge base metadata loaded",
		"files", meta.TotalFiles,
		"chunks", meta.TotalChunks,
		"embedding_model", meta.EmbeddingModel,
	)

	return meta, nil
}
