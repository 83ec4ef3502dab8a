package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

// WebResult is one raw result from a search provider.
type WebResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// SearchProvider is the provider-side interface of the web retriever.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}

// Query length budgets. Providers reject long queries, so the grievance
// text is condensed before searching and hard-capped right before the call.
const (
	condenserInputMax = 800
	condensedQueryMax = 350
	providerQueryMax  = 400

	enrichTopResults = 3
)

var (
	gstFormPattern         = regexp.MustCompile(`(?i)GSTR-?\d+[A-Z]?`)
	notificationPattern    = regexp.MustCompile(`(?i)Notification\s+(?:No\.?\s*)?\d+/\d{4}`)
	financialYearPattern   = regexp.MustCompile(`(?i)FY\s*\d{4}-?\d{2,4}`)
	condenserKeywordVocab  = []string{
		"late fee", "penalty", "notice", "filing", "refund",
		"portal error", "ITC", "composition", "registration", "mismatch",
	}
	categorySearchContexts = map[string]string{
		"gstr_filing":    "GST return filing",
		"penalty_notice": "GST penalty late fee notice",
		"refund":         "GST refund process",
		"registration":   "GST registration",
		"itc_mismatch":   "GST ITC mismatch",
		"eway_bill":      "GST e-way bill",
		"portal_error":   "GST portal error",
	}
)

// WebRetriever condenses a grievance into a short provider query and
// returns the relevant results as evidence.
type WebRetriever struct {
	provider SearchProvider
	aiClient ai.TaxAIClient
	fetcher  *ContentFetcher
}

// NewWebRetrieverParams configures a WebRetriever. A nil Provider produces
// a retriever that always returns no evidence. A nil AIClient falls back
// to regex query condensation. A non-nil Fetcher enables readability
// enrichment of the top results.
type NewWebRetrieverParams struct {
	Provider SearchProvider
	AIClient ai.TaxAIClient
	Fetcher  *ContentFetcher
}

func NewWebRetriever(params NewWebRetrieverParams) *WebRetriever {
	return &WebRetriever{
		provider: params.Provider,
		aiClient: params.AIClient,
		fetcher:  params.Fetcher,
	}
}

// Retrieve condenses the query, executes the provider search, and keeps
// results scoring above the relevance threshold. Any failure yields an
// empty result, never an error.
func (r *WebRetriever) Retrieve(
	ctx context.Context,
	query string,
	category string,
	keywords []string,
	maxResults int,
) []common.Evidence {
	if r.provider == nil {
		logger.Warn("[WebRetriever] no search provider available")
		return nil
	}

	focused := r.buildFocusedQuery(ctx, query, category, keywords)

	// last-resort ceiling for the provider API
	if len(focused) > providerQueryMax {
		focused = util.TruncateHard(focused, providerQueryMax)
		logger.Warn("[WebRetriever] emergency query truncation", "len", len(focused))
	}

	results, err := r.provider.Search(ctx, focused, maxResults)
	if err != nil {
		logger.Error("[WebRetriever] search failed", "err", err)
		return nil
	}

	evidence := make([]common.Evidence, 0, len(results))
	for _, result := range results {
		if result.Score <= webScoreThreshold {
			continue
		}
		content := util.StripHTML(result.Content)
		if content == "" {
			continue
		}
		evidence = append(evidence, common.Evidence{
			SourceKind:     common.SourceWeb,
			Content:        content,
			Citation:       result.URL,
			RelevanceScore: result.Score,
			PublishedDate:  result.PublishedDate,
		})
	}

	r.enrich(ctx, evidence)

	logger.Info("[WebRetriever] retrieved results", "kept", len(evidence), "total", len(results))

	return evidence
}

// enrich replaces short provider snippets of the top results with readable
// page content, best effort.
func (r *WebRetriever) enrich(ctx context.Context, evidence []common.Evidence) {
	if r.fetcher == nil {
		return
	}
	for i := range evidence {
		if i >= enrichTopResults {
			break
		}
		text, err := r.fetcher.Fetch(ctx, evidence[i].Citation)
		if err != nil {
			logger.Debug("[WebRetriever] content enrichment skipped", "url", evidence[i].Citation, "err", err)
			continue
		}
		if len(text) > len(evidence[i].Content) {
			evidence[i].Content = text
		}
	}
}

func (r *WebRetriever) buildFocusedQuery(
	ctx context.Context,
	query string,
	category string,
	keywords []string,
) string {
	if r.aiClient != nil {
		focused, err := r.condenseWithModel(ctx, query)
		if err == nil && focused != "" {
			return focused
		}
		logger.Warn("[WebRetriever] model condensation failed, using regex fallback", "err", err)
	}
	return buildFocusedQueryRegex(query, category, keywords)
}

func (r *WebRetriever) condenseWithModel(ctx context.Context, query string) (string, error) {
	input := util.TruncateRunes(query, condenserInputMax)

	prompt := fmt.Sprintf(`Extract a concise web search query (max 30 words) from this GST grievance:

Query: %s

Focus on:
- GST form numbers (GSTR-4, GSTR-3A, etc.)
- Key issues (late fee, filing, penalty, notice, error)
- Notification/section numbers
- Important entities only

Return ONLY the search query, nothing else. No explanations.`, input)

	response, err := r.aiClient.GenerateCompletion(ctx, prompt, ai.WithTemperature(0.1))
	if err != nil {
		return "", err
	}

	focused := util.TruncateRunes(strings.TrimSpace(response), condensedQueryMax)
	return focused, nil
}

// buildFocusedQueryRegex builds the search query without a model: explicit
// keywords win, otherwise key terms are mined from the grievance text, and
// a category phrase is prepended when category filtering is active.
func buildFocusedQueryRegex(query string, category string, keywords []string) string {
	var parts []string
	if len(keywords) > 0 {
		parts = keywords
		if len(parts) > 5 {
			parts = parts[:5]
		}
	} else {
		parts = extractKeyTerms(query, 5)
	}

	if category != "" {
		phrase, ok := categorySearchContexts[category]
		if !ok {
			phrase = "GST"
		}
		parts = append([]string{phrase}, parts...)
	}

	focused := strings.Join(parts, " ")
	if len(focused) > condensedQueryMax {
		focused = util.TruncateWords(focused, condensedQueryMax)
	}
	return focused
}

// extractKeyTerms mines up to maxTerms search terms from the text,
// preferring form numbers, then notification numbers, then a fixed issue
// vocabulary, then financial years.
func extractKeyTerms(text string, maxTerms int) []string {
	terms := make([]string, 0, maxTerms)

	forms := gstFormPattern.FindAllString(text, -1)
	if len(forms) > 3 {
		forms = forms[:3]
	}
	terms = append(terms, forms...)

	notifications := notificationPattern.FindAllString(text, -1)
	if len(notifications) > 2 {
		notifications = notifications[:2]
	}
	terms = append(terms, notifications...)

	lower := strings.ToLower(text)
	for _, keyword := range condenserKeywordVocab {
		if len(terms) >= maxTerms {
			break
		}
		if strings.Contains(lower, keyword) {
			terms = append(terms, keyword)
		}
	}

	if len(terms) < maxTerms {
		if fy := financialYearPattern.FindString(text); fy != "" {
			terms = append(terms, fy)
		}
	}

	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	return terms
}
