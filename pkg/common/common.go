package common

import "time"

// SourceKind identifies which retriever produced a piece of evidence.
type SourceKind string

const (
	SourceLocalKB   SourceKind = "local_kb"
	SourceWeb       SourceKind = "web"
	SourceSocial    SourceKind = "social"
	SourceReasoning SourceKind = "reasoning"
)

// Evidence is the normalized result unit shared by all retrievers.
// RelevanceScore is source-local and not comparable across kinds: the
// knowledge base reports a cosine distance (lower is better), the web
// provider a relevance in (0,1] (higher is better), the social feed a
// like-count proxy capped at 1.0, and reasoning output a fixed score.
type Evidence struct {
	SourceKind     SourceKind `json:"source_kind"`
	Content        string     `json:"content"`
	Citation       string     `json:"citation"`
	RelevanceScore float64    `json:"relevance_score"`
	PublishedDate  string     `json:"published_date,omitempty"`
}

// EvidenceBundle groups evidence per source kind for one query.
// TotalSources is always the sum of the four slice lengths.
type EvidenceBundle struct {
	Local         []Evidence    `json:"local"`
	Web           []Evidence    `json:"web"`
	Social        []Evidence    `json:"social"`
	Reasoning     []Evidence    `json:"reasoning"`
	TotalSources  int           `json:"total_sources"`
	RetrievalTime time.Duration `json:"retrieval_time_ns"`
}

// GrievanceIssue is one distinct problem extracted from a grievance text.
type GrievanceIssue struct {
	IssueText string   `json:"issue_text"`
	Keywords  []string `json:"keywords,omitempty"`
	Priority  int      `json:"priority"`
}

// ExtractedEntity is a tax-domain entity found during preprocessing,
// e.g. a GSTIN, a return form name, or a notification number.
type ExtractedEntity struct {
	EntityType string `json:"entity_type"`
	Value      string `json:"value"`
	Context    string `json:"context,omitempty"`
}

// PreprocessResult holds the cleaned and structured form of a raw grievance.
type PreprocessResult struct {
	CleanedText    string            `json:"cleaned_text"`
	DetectedIntent string            `json:"detected_intent"`
	Issues         []GrievanceIssue  `json:"issues"`
	Entities       []ExtractedEntity `json:"entities"`
	Language       string            `json:"language"`
}

// Classification assigns the grievance to taxonomy categories with
// per-category confidence in [0,1].
type Classification struct {
	PrimaryCategory     string             `json:"primary_category"`
	SecondaryCategories []string           `json:"secondary_categories,omitempty"`
	ConfidenceScores    map[string]float64 `json:"confidence_scores,omitempty"`
}

// IssueResolution is the synthesized answer for one issue. Resolution is
// nil when the answer was withheld by the confidence gate, in which case
// ReasonForNull explains why.
type IssueResolution struct {
	Issue           string   `json:"issue"`
	Resolution      *string  `json:"resolution"`
	Confidence      int      `json:"confidence"`
	LegalBasis      []string `json:"legal_basis,omitempty"`
	SourceCitations []string `json:"source_citations,omitempty"`
	ReasonForNull   string   `json:"reason_for_null,omitempty"`
}

// ResolverOutput is the full synthesizer result before response rendering.
type ResolverOutput struct {
	Resolutions        []IssueResolution `json:"resolutions"`
	OverallConfidence  int               `json:"overall_confidence"`
	RequiresEscalation bool              `json:"requires_escalation"`
}

// FinalResponse is the user-facing answer produced from a ResolverOutput.
type FinalResponse struct {
	DirectAnswer         string   `json:"direct_answer"`
	AdditionalResources  []string `json:"additional_resources,omitempty"`
	ConfidenceScore      int      `json:"confidence_score"`
	RequiresManualReview bool     `json:"requires_manual_review"`
}
