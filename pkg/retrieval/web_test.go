package retrieval

import (
	"context"
	"strings"
	"testing"
)

func TestWebRetrieverScoreThreshold(t *testing.T) {
	provider := &fakeSearchProvider{results: []WebResult{
		{Title: "Late fee notification", URL: "https://example.com/a", Content: "Late fee waived for GSTR-4.", Score: 0.6},
		{Title: "Low relevance", URL: "https://example.com/b", Content: "Generic tax news.", Score: 0.4},
		{Title: "Boundary", URL: "https://example.com/c", Content: "Exactly at threshold.", Score: 0.5},
	}}
	retriever := NewWebRetriever(NewWebRetrieverParams{Provider: provider})

	results := retriever.Retrieve(context.Background(), "GSTR-4 late fee", "", nil, 10)

	if len(results) != 1 {
		t.Fatalf("expected only results scoring above 0.5, got %d", len(results))
	}
	if results[0].Citation != "https://example.com/a" {
		t.Fatalf("wrong result survived: %q", results[0].Citation)
	}
}

func TestWebRetrieverStripsHTML(t *testing.T) {
	provider := &fakeSearchProvider{results: []WebResult{
		{URL: "https://example.com", Content: "<p>Late fee <b>waived</b></p>", Score: 0.9},
	}}
	retriever := NewWebRetriever(NewWebRetrieverParams{Provider: provider})

	results := retriever.Retrieve(context.Background(), "late fee", "", nil, 10)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != "Late fee waived" {
		t.Fatalf("html not stripped: %q", results[0].Content)
	}
}

func TestWebRetrieverQueryNeverExceedsProviderMax(t *testing.T) {
	provider := &fakeSearchProvider{}
	long := strings.Repeat("late fee penalty notice for GSTR-3B filings ", 30)
	retriever := NewWebRetriever(NewWebRetrieverParams{
		Provider: provider,
		AIClient: &fakeAIClient{completion: long},
	})

	retriever.Retrieve(context.Background(), long, "", nil, 10)

	if len(provider.lastQuery) > providerQueryMax {
		t.Fatalf("query of %d bytes exceeds the provider ceiling", len(provider.lastQuery))
	}
}

func TestBuildFocusedQueryRegexKeywordsWin(t *testing.T) {
	query := buildFocusedQueryRegex("ignored text", "", []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7"})
	if query != "k1 k2 k3 k4 k5" {
		t.Fatalf("expected first five keywords, got %q", query)
	}
}

func TestBuildFocusedQueryRegexCategoryPhrase(t *testing.T) {
	query := buildFocusedQueryRegex("anything", "penalty_notice", []string{"late fee"})
	if !strings.HasPrefix(query, "GST penalty late fee notice") {
		t.Fatalf("expected category phrase prefix, got %q", query)
	}

	query = buildFocusedQueryRegex("anything", "unknown_category", []string{"late fee"})
	if !strings.HasPrefix(query, "GST ") {
		t.Fatalf("expected default GST prefix for unknown category, got %q", query)
	}
}

func TestExtractKeyTerms(t *testing.T) {
	text := "Received Notification No. 12/2024 about GSTR-3B and GSTR-1 late fee and penalty for FY 2023-24"
	terms := extractKeyTerms(text, 5)

	if len(terms) != 5 {
		t.Fatalf("expected 5 terms, got %v", terms)
	}
	joined := strings.Join(terms, "|")
	if !strings.Contains(joined, "GSTR-3B") || !strings.Contains(joined, "GSTR-1") {
		t.Fatalf("expected form numbers first, got %v", terms)
	}
	if !strings.Contains(joined, "Notification No. 12/2024") {
		t.Fatalf("expected notification number, got %v", terms)
	}
}

func TestWebRetrieverModelCondensation(t *testing.T) {
	provider := &fakeSearchProvider{}
	retriever := NewWebRetriever(NewWebRetrieverParams{
		Provider: provider,
		AIClient: &fakeAIClient{completion: "GSTR-4 late fee waiver notification"},
	})

	retriever.Retrieve(context.Background(), "long grievance text about GSTR-4 late fees", "", nil, 10)

	if provider.lastQuery != "GSTR-4 late fee waiver notification" {
		t.Fatalf("expected condensed model query, got %q", provider.lastQuery)
	}
}
