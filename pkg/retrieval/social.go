package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

// Post is one social feed entry.
type Post struct {
	Text      string
	CreatedAt time.Time
	Likes     int
}

// FeedClient is the provider-side interface of the social retriever.
type FeedClient interface {
	SearchRecent(ctx context.Context, query string, maxResults int) ([]Post, error)
}

// The feed provider rejects page sizes above this limit.
const socialProviderMaxResults = 10

// SocialRetriever pulls recent posts from the official GSTN account and
// scores them by engagement.
type SocialRetriever struct {
	client  FeedClient
	account string
}

// NewSocialRetrieverParams configures a SocialRetriever. A nil Client
// produces a retriever that always returns no evidence.
type NewSocialRetrieverParams struct {
	Client  FeedClient
	Account string
}

func NewSocialRetriever(params NewSocialRetrieverParams) *SocialRetriever {
	return &SocialRetriever{
		client:  params.Client,
		account: strings.TrimPrefix(params.Account, "@"),
	}
}

// Retrieve searches the account timeline for the given keywords. Scores
// are the like count scaled by 100 and capped at 1.0. Any failure yields
// an empty result, never an error.
func (r *SocialRetriever) Retrieve(
	ctx context.Context,
	keywords []string,
	maxResults int,
) []common.Evidence {
	if r.client == nil {
		logger.Warn("[SocialRetriever] feed client not available")
		return nil
	}

	if maxResults > socialProviderMaxResults {
		maxResults = socialProviderMaxResults
	}

	query := BuildFeedQuery(r.account, keywords)
	logger.Debug("[SocialRetriever] feed query", "query", query)

	posts, err := r.client.SearchRecent(ctx, query, maxResults)
	if err != nil {
		logger.Error("[SocialRetriever] feed search failed", "err", err)
		return nil
	}

	evidence := make([]common.Evidence, 0, len(posts))
	for _, post := range posts {
		if post.Text == "" {
			continue
		}
		score := float64(post.Likes) / 100.0
		if score > 1.0 {
			score = 1.0
		}
		timestamp := post.CreatedAt.Format(time.RFC3339)
		evidence = append(evidence, common.Evidence{
			SourceKind:     common.SourceSocial,
			Content:        post.Text,
			Citation:       fmt.Sprintf("@%s - %s", r.account, timestamp),
			RelevanceScore: score,
			PublishedDate:  timestamp,
		})
	}

	logger.Info("[SocialRetriever] retrieved posts", "count", len(evidence))

	return evidence
}

// BuildFeedQuery constrains the search to one account and ORs the
// keywords, each individually quoted so multi-word keywords never parse
// as boolean operators.
func BuildFeedQuery(account string, keywords []string) string {
	account = strings.TrimPrefix(account, "@")
	if len(keywords) == 0 {
		return "from:" + account
	}

	quoted := make([]string, len(keywords))
	for i, keyword := range keywords {
		quoted[i] = `"` + keyword + `"`
	}
	return fmt.Sprintf("from:%s (%s)", account, strings.Join(quoted, " OR "))
}
