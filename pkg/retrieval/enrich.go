package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

// ContentFetcher downloads a result URL and extracts its readable text.
// Concurrent fetches of the same URL are collapsed and results cached for
// the lifetime of the fetcher.
type ContentFetcher struct {
	httpClient *http.Client
	maxBytes   int64

	cache   map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewContentFetcher creates a fetcher with a bounded response size.
func NewContentFetcher() *ContentFetcher {
	return &ContentFetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxBytes:   2 << 20,
		cache:      make(map[string]string),
	}
}

// Fetch returns the readable text of the page at rawURL.
func (f *ContentFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	f.cacheMu.RLock()
	if cached, ok := f.cache[rawURL]; ok {
		f.cacheMu.RUnlock()
		return cached, nil
	}
	f.cacheMu.RUnlock()

	result, err, _ := f.group.Do(rawURL, func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return nil, fmt.Errorf("not an html page")
		}

		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse url: %w", err)
		}

		article, err := readability.FromReader(http.MaxBytesReader(nil, resp.Body, f.maxBytes), u)
		if err != nil {
			return nil, fmt.Errorf("failed to parse html: %w", err)
		}
		var builder strings.Builder
		if err := article.RenderText(&builder); err != nil {
			return nil, fmt.Errorf("failed to render article text: %w", err)
		}

		text := strings.TrimSpace(builder.String())

		f.cacheMu.Lock()
		f.cache[rawURL] = text
		f.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}
