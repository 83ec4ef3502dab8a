package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const twitterDefaultBaseURL = "https://api.twitter.com"

// TwitterFeedClient implements FeedClient against the Twitter v2 recent
// search endpoint.
type TwitterFeedClient struct {
	bearerToken string
	baseURL     string
	httpClient  *http.Client
}

// NewTwitterFeedClientParams configures a TwitterFeedClient.
type NewTwitterFeedClientParams struct {
	BearerToken string
	BaseURL     string
}

// NewTwitterFeedClient creates a Twitter client. An empty bearer token
// returns nil so callers can treat the feed as unavailable.
func NewTwitterFeedClient(params NewTwitterFeedClientParams) *TwitterFeedClient {
	if params.BearerToken == "" {
		return nil
	}
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = twitterDefaultBaseURL
	}
	return &TwitterFeedClient{
		bearerToken: params.BearerToken,
		baseURL:     baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type twitterSearchResponse struct {
	Data []struct {
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			LikeCount int `json:"like_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// SearchRecent queries the recent search endpoint and maps the tweets.
func (c *TwitterFeedClient) SearchRecent(ctx context.Context, query string, maxResults int) ([]Post, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "created_at,public_metrics")

	endpoint := c.baseURL + "/2/tweets/search/recent?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create twitter request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("twitter search status %d: %s", resp.StatusCode, payload)
	}

	var parsed twitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode twitter response: %w", err)
	}

	posts := make([]Post, 0, len(parsed.Data))
	for _, tweet := range parsed.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			createdAt = time.Time{}
		}
		posts = append(posts, Post{
			Text:      tweet.Text,
			CreatedAt: createdAt,
			Likes:     tweet.PublicMetrics.LikeCount,
		})
	}
	return posts, nil
}
