package workflow

import (
	"time"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/graph"
	"github.com/taxmitra/grievance/pkg/preprocess"
	"github.com/taxmitra/grievance/pkg/resolve"
	"github.com/taxmitra/grievance/pkg/retrieval"
	"github.com/taxmitra/grievance/pkg/store"
)

// NewPipelineFromEnvParams carries the shared runtime resources. Everything
// else (provider keys, result caps, timeouts) comes from the environment.
type NewPipelineFromEnvParams struct {
	AIClient ai.TaxAIClient
	Index    store.VectorIndex
	Graph    *graph.RelationGraph
}

// NewPipelineFromEnv wires the full grievance pipeline from environment
// configuration. Providers without credentials are left unset and their
// retrieval source degrades to empty results.
func NewPipelineFromEnv(params NewPipelineFromEnvParams) *Pipeline {
	local := retrieval.NewLocalRetriever(retrieval.NewLocalRetrieverParams{
		Index:       params.Index,
		AIClient:    params.AIClient,
		Graph:       params.Graph,
		BoostFactor: util.GetEnvNumeric("GRAPH_BOOST_FACTOR", 0),
	})

	var provider retrieval.SearchProvider
	if tavily := retrieval.NewTavilyClient(retrieval.NewTavilyClientParams{
		ApiKey:  util.GetEnv("TAVILY_API_KEY"),
		BaseURL: util.GetEnv("TAVILY_BASE_URL"),
	}); tavily != nil {
		provider = tavily
	}
	web := retrieval.NewWebRetriever(retrieval.NewWebRetrieverParams{
		Provider: provider,
		AIClient: params.AIClient,
		Fetcher:  retrieval.NewContentFetcher(),
	})

	var feed retrieval.FeedClient
	if twitter := retrieval.NewTwitterFeedClient(retrieval.NewTwitterFeedClientParams{
		BearerToken: util.GetEnv("TWITTER_BEARER_TOKEN"),
		BaseURL:     util.GetEnv("TWITTER_BASE_URL"),
	}); twitter != nil {
		feed = twitter
	}
	social := retrieval.NewSocialRetriever(retrieval.NewSocialRetrieverParams{
		Client:  feed,
		Account: util.GetEnvString("GSTN_FEED_ACCOUNT", "Infosys_GSTN"),
	})

	reasoning := retrieval.NewReasoningRetriever(retrieval.NewReasoningRetrieverParams{
		AIClient: params.AIClient,
	})

	orchestrator := retrieval.NewOrchestrator(retrieval.NewOrchestratorParams{
		Local:     local,
		Web:       web,
		Social:    social,
		Reasoning: reasoning,

		MaxLocalResults:  int(util.GetEnvNumeric("MAX_LOCAL_RESULTS", 0)),
		MaxWebResults:    int(util.GetEnvNumeric("MAX_WEB_RESULTS", 0)),
		MaxSocialResults: int(util.GetEnvNumeric("MAX_SOCIAL_RESULTS", 0)),
		Timeout:          time.Duration(util.GetEnvNumeric("RETRIEVAL_TIMEOUT_SEC", 0)) * time.Second,
		Unrestricted:     util.GetEnvBool("WEB_SEARCH_UNRESTRICTED", false),
	})

	resolver := resolve.NewResolver(resolve.NewResolverParams{
		AIClient:      params.AIClient,
		MinConfidence: int(util.GetEnvNumeric("MIN_CONFIDENCE", 0)),
	})

	return NewPipeline(NewPipelineParams{
		Preprocessor: preprocess.NewPreprocessor(preprocess.NewPreprocessorParams{AIClient: params.AIClient}),
		Classifier:   preprocess.NewClassifier(preprocess.NewClassifierParams{AIClient: params.AIClient}),
		Orchestrator: orchestrator,
		Resolver:     resolver,
	})
}
