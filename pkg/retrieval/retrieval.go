// Package retrieval implements the four evidence sources used to answer a
// GST grievance: the local vector knowledge base with relation-graph
// boosting, a web search provider, the GSTN social feed, and a batched
// reasoning model. The Orchestrator fans a query out to all four and
// aggregates their output into one EvidenceBundle.
package retrieval

import "time"

// Default result and timing limits, overridable through the orchestrator
// configuration in cmd wiring.
const (
	DefaultMaxLocalResults  = 5
	DefaultMaxWebResults    = 10
	DefaultMaxSocialResults = 10

	DefaultRetrievalTimeout = 10 * time.Second
)

// Per-source acceptance thresholds. Local scores are cosine distances
// (lower is better), web scores are provider relevance (higher is better).
const (
	localDistanceThreshold = 0.15
	webScoreThreshold      = 0.5
)
