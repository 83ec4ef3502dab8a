package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBuildFeedQuery(t *testing.T) {
	query := BuildFeedQuery("@Infosys_GSTN", []string{"late fee", "GSTR-3B"})
	want := `from:Infosys_GSTN ("late fee" OR "GSTR-3B")`
	if query != want {
		t.Fatalf("expected %q, got %q", want, query)
	}

	if query := BuildFeedQuery("Infosys_GSTN", nil); query != "from:Infosys_GSTN" {
		t.Fatalf("expected bare account query, got %q", query)
	}
}

func TestSocialRetrieverScoring(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeFeedClient{posts: []Post{
		{Text: "GSTR-3B due date extended", CreatedAt: created, Likes: 250},
		{Text: "Portal maintenance tonight", CreatedAt: created, Likes: 40},
		{Text: "", CreatedAt: created, Likes: 500},
	}}
	retriever := NewSocialRetriever(NewSocialRetrieverParams{
		Client:  client,
		Account: "@Infosys_GSTN",
	})

	results := retriever.Retrieve(context.Background(), []string{"GSTR-3B"}, 10)

	if len(results) != 2 {
		t.Fatalf("expected empty posts dropped, got %d results", len(results))
	}
	if results[0].RelevanceScore != 1.0 {
		t.Fatalf("expected like score capped at 1.0, got %v", results[0].RelevanceScore)
	}
	if results[1].RelevanceScore != 0.4 {
		t.Fatalf("expected score 0.4 for 40 likes, got %v", results[1].RelevanceScore)
	}
	want := "@Infosys_GSTN - 2025-06-01T12:00:00Z"
	if results[0].Citation != want {
		t.Fatalf("expected citation %q, got %q", want, results[0].Citation)
	}
}

func TestSocialRetrieverCapsMaxResults(t *testing.T) {
	client := &fakeFeedClient{}
	retriever := NewSocialRetriever(NewSocialRetrieverParams{Client: client, Account: "acct"})

	retriever.Retrieve(context.Background(), []string{"kw"}, 50)

	if client.lastMaxResults != socialProviderMaxResults {
		t.Fatalf("expected provider cap of %d, got %d", socialProviderMaxResults, client.lastMaxResults)
	}
}

func TestSocialRetrieverDegradesOnError(t *testing.T) {
	client := &fakeFeedClient{searchErr: errors.New("rate limited")}
	retriever := NewSocialRetriever(NewSocialRetrieverParams{Client: client, Account: "acct"})

	if results := retriever.Retrieve(context.Background(), []string{"kw"}, 5); results != nil {
		t.Fatalf("expected nil results on provider error, got %d", len(results))
	}
}
