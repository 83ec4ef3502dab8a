package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyDefaultBaseURL = "https://api.tavily.com"

// TavilyClient implements SearchProvider against the Tavily search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClientParams configures a TavilyClient.
type NewTavilyClientParams struct {
	ApiKey  string
	BaseURL string
}

// NewTavilyClient creates a Tavily search client. An empty API key returns
// nil so callers can treat the provider as unavailable.
func NewTavilyClient(params NewTavilyClientParams) *TavilyClient {
	if params.ApiKey == "" {
		return nil
	}
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = tavilyDefaultBaseURL
	}
	return &TavilyClient{
		apiKey:  params.ApiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type tavilySearchRequest struct {
	ApiKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	MaxResults        int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search executes an advanced-depth Tavily search and maps the raw results.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]WebResult, error) {
	body, err := json.Marshal(tavilySearchRequest{
		ApiKey:            c.apiKey,
		Query:             query,
		SearchDepth:       "advanced",
		IncludeAnswer:     false,
		IncludeRawContent: false,
		MaxResults:        maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("tavily search status %d: %s", resp.StatusCode, payload)
	}

	var parsed tavilySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	results := make([]WebResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, WebResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return results, nil
}
