package retrieval

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

// Orchestrator fans a grievance out to all evidence sources and merges
// their results into one bundle.
type Orchestrator struct {
	local     *LocalRetriever
	web       *WebRetriever
	social    *SocialRetriever
	reasoning *ReasoningRetriever

	maxLocal  int
	maxWeb    int
	maxSocial int
	timeout   time.Duration

	// Unrestricted disables category filtering of the local and web
	// sources.
	unrestricted bool
}

// NewOrchestratorParams configures an Orchestrator. Any nil retriever is
// skipped; zero limits select the defaults.
type NewOrchestratorParams struct {
	Local     *LocalRetriever
	Web       *WebRetriever
	Social    *SocialRetriever
	Reasoning *ReasoningRetriever

	MaxLocalResults  int
	MaxWebResults    int
	MaxSocialResults int
	Timeout          time.Duration
	Unrestricted     bool
}

func NewOrchestrator(params NewOrchestratorParams) *Orchestrator {
	o := &Orchestrator{
		local:        params.Local,
		web:          params.Web,
		social:       params.Social,
		reasoning:    params.Reasoning,
		maxLocal:     params.MaxLocalResults,
		maxWeb:       params.MaxWebResults,
		maxSocial:    params.MaxSocialResults,
		timeout:      params.Timeout,
		unrestricted: params.Unrestricted,
	}
	if o.maxLocal <= 0 {
		o.maxLocal = DefaultMaxLocalResults
	}
	if o.maxWeb <= 0 {
		o.maxWeb = DefaultMaxWebResults
	}
	if o.maxSocial <= 0 {
		o.maxSocial = DefaultMaxSocialResults
	}
	if o.timeout <= 0 {
		o.timeout = DefaultRetrievalTimeout
	}
	return o
}

// Retrieve gathers evidence from all configured sources in parallel. Source
// failures degrade to empty slices, so the bundle is always usable; the
// returned error list records what went wrong.
func (o *Orchestrator) Retrieve(
	ctx context.Context,
	query string,
	pre *common.PreprocessResult,
	classification *common.Classification,
	progress util.ProgressFunc,
) (common.EvidenceBundle, []string) {
	progress.Report("Initiating parallel retrieval", 0.62)

	if pre == nil {
		logger.Error("[Orchestrator] no preprocessing output available")
		return common.EvidenceBundle{}, []string{"No preprocessing output available"}
	}

	keywords := buildKeywords(pre, classification)

	categoryFilter := ""
	if classification != nil && !o.unrestricted {
		categoryFilter = classification.PrimaryCategory
	}

	started := time.Now()
	bundle := common.EvidenceBundle{}

	// Milestones are reported here in launch order, not inside the source
	// goroutines, so consumers always observe a monotonically increasing
	// fraction regardless of scheduling.
	group, groupCtx := errgroup.WithContext(ctx)

	if o.social != nil {
		progress.Report("Searching official social timeline", 0.64)
		group.Go(func() error {
			srcCtx, cancel := context.WithTimeout(groupCtx, o.timeout)
			defer cancel()
			bundle.Social = o.social.Retrieve(srcCtx, keywords, o.maxSocial)
			return nil
		})
	}

	if o.local != nil {
		progress.Report("Querying local knowledge base", 0.68)
		group.Go(func() error {
			srcCtx, cancel := context.WithTimeout(groupCtx, o.timeout)
			defer cancel()
			bundle.Local = o.local.Retrieve(srcCtx, query, o.maxLocal, categoryFilter, true)
			return nil
		})
	}

	if o.web != nil {
		progress.Report("Searching the web", 0.72)
		group.Go(func() error {
			srcCtx, cancel := context.WithTimeout(groupCtx, o.timeout)
			defer cancel()
			bundle.Web = o.web.Retrieve(srcCtx, query, categoryFilter, keywords, o.maxWeb)
			return nil
		})
	}

	if o.reasoning != nil {
		progress.Report("Synthesizing expert analysis", 0.76)
		group.Go(func() error {
			srcCtx, cancel := context.WithTimeout(groupCtx, o.timeout)
			defer cancel()
			bundle.Reasoning = o.reasoning.Retrieve(srcCtx, pre.Issues, pre.Entities)
			return nil
		})
	}

	// Retrievers never return errors, they degrade to empty results.
	_ = group.Wait()

	progress.Report("Aggregating retrieval results", 0.78)

	bundle.TotalSources = len(bundle.Social) + len(bundle.Local) + len(bundle.Web) + len(bundle.Reasoning)
	bundle.RetrievalTime = time.Since(started)

	logger.Info("[Orchestrator] retrieval complete",
		"total", bundle.TotalSources,
		"social", len(bundle.Social),
		"local", len(bundle.Local),
		"web", len(bundle.Web),
		"reasoning", len(bundle.Reasoning),
		"duration", bundle.RetrievalTime,
	)

	progress.Report("Completed multi-source retrieval", 0.79)

	return bundle, nil
}

// buildKeywords flattens the preprocessing and classification outputs into
// the search keyword list shared by the social and web sources.
func buildKeywords(pre *common.PreprocessResult, classification *common.Classification) []string {
	var keywords []string
	for _, issue := range pre.Issues {
		keywords = append(keywords, issue.IssueText)
	}
	for _, entity := range pre.Entities {
		keywords = append(keywords, entity.Value)
	}
	if classification != nil {
		keywords = append(keywords, classification.PrimaryCategory)
		keywords = append(keywords, classification.SecondaryCategories...)
	}
	return keywords
}
