package retrieval

import (
	"context"
	"errors"

	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/store"
)

// fakeAIClient returns canned completions and embeddings.
type fakeAIClient struct {
	completion    string
	completionErr error
	embedding     []float32
	embeddingErr  error

	lastPrompt string
}

func (f *fakeAIClient) GenerateCompletion(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
	f.lastPrompt = prompt
	if f.completionErr != nil {
		return "", f.completionErr
	}
	return f.completion, nil
}

func (f *fakeAIClient) GenerateCompletionWithFormat(_ context.Context, _, _, _ string, _ any, _ ...ai.GenerateOption) error {
	return errors.New("not implemented")
}

func (f *fakeAIClient) GenerateEmbedding(_ context.Context, _ []byte) ([]float32, error) {
	if f.embeddingErr != nil {
		return nil, f.embeddingErr
	}
	if f.embedding != nil {
		return f.embedding, nil
	}
	return make([]float32, 8), nil
}

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

// fakeIndex serves a fixed chunk list regardless of the embedding.
type fakeIndex struct {
	chunks    []store.Chunk
	searchErr error

	lastLimit int
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, limit int) ([]store.Chunk, error) {
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.chunks) > limit {
		return f.chunks[:limit], nil
	}
	return f.chunks, nil
}

func (f *fakeIndex) Stats(_ context.Context) (store.KBStats, error) {
	return store.KBStats{TotalChunks: int64(len(f.chunks))}, nil
}

// fakeSearchProvider serves fixed web results and records the query.
type fakeSearchProvider struct {
	results   []WebResult
	searchErr error

	lastQuery string
}

func (f *fakeSearchProvider) Search(_ context.Context, query string, _ int) ([]WebResult, error) {
	f.lastQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

// fakeFeedClient serves fixed posts and records the query.
type fakeFeedClient struct {
	posts     []Post
	searchErr error

	lastQuery      string
	lastMaxResults int
}

func (f *fakeFeedClient) SearchRecent(_ context.Context, query string, maxResults int) ([]Post, error) {
	f.lastQuery = query
	f.lastMaxResults = maxResults
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.posts, nil
}
