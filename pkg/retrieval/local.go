package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/graph"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/store"
)

// GST acronyms worth seeding a graph traversal with.
var gstEntityPattern = regexp.MustCompile(`\b(GST|GSTIN|GSTR-[0-9]+|GSTN|CBIC)\b`)

const (
	graphBoostDepth         = 2
	graphBoostMaxPerSeed    = 5
	defaultGraphBoostFactor = 0.1
)

// LocalRetriever searches the pre-built knowledge base by embedding
// similarity, optionally re-ranked with relation-graph boosts.
type LocalRetriever struct {
	index       store.VectorIndex
	aiClient    ai.TaxAIClient
	graph       *graph.RelationGraph
	boostFactor float64
}

// NewLocalRetrieverParams configures a LocalRetriever. A nil Index or
// AIClient produces a retriever that always returns no evidence; a nil
// Graph disables boosting only.
type NewLocalRetrieverParams struct {
	Index    store.VectorIndex
	AIClient ai.TaxAIClient
	Graph    *graph.RelationGraph

	// BoostFactor scales the graph weight subtracted from the distance of
	// chunks mentioning a related entity. Zero selects the default of 0.1.
	BoostFactor float64
}

func NewLocalRetriever(params NewLocalRetrieverParams) *LocalRetriever {
	boost := params.BoostFactor
	if boost <= 0 {
		boost = defaultGraphBoostFactor
	}
	return &LocalRetriever{
		index:       params.Index,
		aiClient:    params.AIClient,
		graph:       params.Graph,
		boostFactor: boost,
	}
}

type scoredChunk struct {
	chunk store.Chunk
	score float64
}

// Retrieve returns up to k knowledge-base chunks for the query, closest
// first. Chunks not matching categoryFilter are dropped before ranking,
// and only chunks under the distance threshold are kept. An unavailable
// index or a failed search yields an empty result, never an error.
func (r *LocalRetriever) Retrieve(
	ctx context.Context,
	query string,
	k int,
	categoryFilter string,
	useGraph bool,
) []common.Evidence {
	if r.index == nil || r.aiClient == nil {
		logger.Warn("[LocalRetriever] vector index not available")
		return nil
	}
	if k <= 0 {
		return nil
	}

	// over-fetch to survive category filtering and re-ranking
	fetchK := k * 2
	if useGraph && r.graph != nil {
		fetchK = k * 3
	}

	embedding, err := r.aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		logger.Error("[LocalRetriever] query embedding failed", "err", err)
		return nil
	}

	chunks, err := r.index.Search(ctx, embedding, fetchK)
	if err != nil {
		logger.Error("[LocalRetriever] search failed", "err", err)
		return nil
	}

	scored := make([]scoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if categoryFilter != "" && chunk.Category != categoryFilter {
			continue
		}
		scored = append(scored, scoredChunk{chunk: chunk, score: chunk.Distance})
	}

	if useGraph && r.graph != nil {
		r.applyGraphBoost(query, scored)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score < scored[j].score
	})

	kept := scored[:0]
	for _, s := range scored {
		if s.score < localDistanceThreshold {
			kept = append(kept, s)
		}
	}
	if len(kept) > k {
		kept = kept[:k]
	}

	results := make([]common.Evidence, 0, len(kept))
	for _, s := range kept {
		if s.chunk.Content == "" {
			continue
		}
		results = append(results, common.Evidence{
			SourceKind:     common.SourceLocalKB,
			Content:        s.chunk.Content,
			Citation:       chunkCitation(s.chunk),
			RelevanceScore: s.score,
			PublishedDate:  s.chunk.PublishedDate,
		})
	}

	logger.Info("[LocalRetriever] retrieved chunks", "count", len(results), "fetched", len(chunks))

	return results
}

// applyGraphBoost lowers the distance of chunks mentioning entities related
// to the GST terms found in the query. A failed or empty traversal leaves
// scores untouched.
func (r *LocalRetriever) applyGraphBoost(query string, scored []scoredChunk) {
	seeds := extractGSTEntities(query)
	if len(seeds) == 0 {
		return
	}

	related := make([]graph.Related, 0)
	for _, seed := range seeds {
		related = append(related, r.graph.FindRelated(seed, graphBoostDepth, graphBoostMaxPerSeed)...)
	}
	if len(related) == 0 {
		return
	}

	for i := range scored {
		content := strings.ToLower(scored[i].chunk.Content)
		boost := 0.0
		for _, rel := range related {
			if strings.Contains(content, strings.ToLower(rel.Entity)) {
				boost += rel.Weight * r.boostFactor
			}
		}
		scored[i].score -= boost
	}

	logger.Debug("[LocalRetriever] graph boost applied", "related_entities", len(related))
}

func extractGSTEntities(text string) []string {
	matches := gstEntityPattern.FindAllString(strings.ToUpper(text), -1)
	seen := make(map[string]bool, len(matches))
	entities := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		entities = append(entities, m)
	}
	return entities
}

func chunkCitation(chunk store.Chunk) string {
	filename := chunk.Filename
	if filename == "" {
		filename = "Unknown"
	}
	if chunk.Page != nil {
		return fmt.Sprintf("%s, p%d", filename, *chunk.Page)
	}
	return filename
}
