package retrieval

import (
	"context"
	"testing"

	"github.com/taxmitra/grievance/pkg/graph"
	"github.com/taxmitra/grievance/pkg/store"
)

func intPtr(v int) *int { return &v }

func TestLocalRetrieverDistanceThreshold(t *testing.T) {
	index := &fakeIndex{chunks: []store.Chunk{
		{ID: 1, Content: "late fee waiver circular", Filename: "circular.pdf", Page: intPtr(3), Distance: 0.05},
		{ID: 2, Content: "GSTR-3B filing steps", Filename: "manual.pdf", Distance: 0.10},
		{ID: 3, Content: "unrelated customs content", Filename: "customs.pdf", Distance: 0.20},
	}}
	retriever := NewLocalRetriever(NewLocalRetrieverParams{
		Index:    index,
		AIClient: &fakeAIClient{},
	})

	results := retriever.Retrieve(context.Background(), "GSTR-3B late fee", 5, "", false)

	if len(results) != 2 {
		t.Fatalf("expected 2 chunks under the distance threshold, got %d", len(results))
	}
	if results[0].Citation != "circular.pdf, p3" {
		t.Fatalf("unexpected citation: %q", results[0].Citation)
	}
	if results[1].Citation != "manual.pdf" {
		t.Fatalf("unexpected citation: %q", results[1].Citation)
	}
	if results[0].RelevanceScore >= results[1].RelevanceScore {
		t.Fatalf("results not sorted by ascending distance")
	}
}

func TestLocalRetrieverTruncatesToK(t *testing.T) {
	chunks := make([]store.Chunk, 6)
	for i := range chunks {
		chunks[i] = store.Chunk{
			ID:       int64(i + 1),
			Content:  "chunk content",
			Filename: "doc.pdf",
			Distance: 0.01 * float64(i+1),
		}
	}
	index := &fakeIndex{chunks: chunks}
	retriever := NewLocalRetriever(NewLocalRetrieverParams{
		Index:    index,
		AIClient: &fakeAIClient{},
	})

	results := retriever.Retrieve(context.Background(), "refund status", 2, "", false)

	if len(results) != 2 {
		t.Fatalf("expected results truncated to k=2, got %d", len(results))
	}
	if index.lastLimit != 4 {
		t.Fatalf("expected over-fetch of k*2=4 without graph, got %d", index.lastLimit)
	}
}

func TestLocalRetrieverCategoryFilter(t *testing.T) {
	index := &fakeIndex{chunks: []store.Chunk{
		{ID: 1, Content: "refund rules", Filename: "refund.pdf", Category: "refund", Distance: 0.05},
		{ID: 2, Content: "registration rules", Filename: "reg.pdf", Category: "registration", Distance: 0.04},
	}}
	retriever := NewLocalRetriever(NewLocalRetrieverParams{
		Index:    index,
		AIClient: &fakeAIClient{},
	})

	results := retriever.Retrieve(context.Background(), "refund delay", 5, "refund", false)

	if len(results) != 1 {
		t.Fatalf("expected only the matching category, got %d results", len(results))
	}
	if results[0].Citation != "refund.pdf" {
		t.Fatalf("wrong chunk survived the filter: %q", results[0].Citation)
	}
}

func TestLocalRetrieverGraphBoostReorders(t *testing.T) {
	// Both chunks pass the threshold; the boost flips their order because
	// the second one mentions an entity related to GSTR-3B.
	index := &fakeIndex{chunks: []store.Chunk{
		{ID: 1, Content: "general filing guidance", Filename: "a.pdf", Distance: 0.10},
		{ID: 2, Content: "late fee computation under section 47", Filename: "b.pdf", Distance: 0.12},
	}}

	g := graph.NewRelationGraph()
	g.AddNode(graph.Node{Label: "GSTR-3B", EntityType: "form"})
	g.AddEdge(graph.Edge{Source: "GSTR-3B", Target: "Late Fee", Relation: "incurs", Weight: 0.9})

	retriever := NewLocalRetriever(NewLocalRetrieverParams{
		Index:    index,
		AIClient: &fakeAIClient{},
		Graph:    g,
	})

	results := retriever.Retrieve(context.Background(), "GSTR-3B not filed", 5, "", true)

	if index.lastLimit != 15 {
		t.Fatalf("expected over-fetch of k*3=15 with graph, got %d", index.lastLimit)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// 0.12 - 0.9*0.1 = 0.03 beats the unboosted 0.10
	if results[0].Citation != "b.pdf" {
		t.Fatalf("expected boosted chunk first, got %q", results[0].Citation)
	}
}

func TestLocalRetrieverNilIndex(t *testing.T) {
	retriever := NewLocalRetriever(NewLocalRetrieverParams{AIClient: &fakeAIClient{}})
	if results := retriever.Retrieve(context.Background(), "query", 5, "", false); results != nil {
		t.Fatalf("expected nil results without an index, got %d", len(results))
	}
}

func TestExtractGSTEntities(t *testing.T) {
	entities := extractGSTEntities("my gstin is blocked and GSTR-3B plus gstr-1 are pending with GSTN")
	want := map[string]bool{"GSTIN": true, "GSTR-3B": true, "GSTR-1": true, "GSTN": true}
	if len(entities) != len(want) {
		t.Fatalf("expected %d unique entities, got %v", len(want), entities)
	}
	for _, e := range entities {
		if !want[e] {
			t.Fatalf("unexpected entity %q", e)
		}
	}
}
