package preprocess

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

// CategoryOthers is the catch-all grievance category.
const CategoryOthers = "others"

// Categories is the closed grievance taxonomy. The keys double as the
// category filter values of the knowledge base.
var Categories = []string{
	"gstr_filing",
	"penalty_notice",
	"refund",
	"registration",
	"itc_mismatch",
	"eway_bill",
	"portal_error",
	CategoryOthers,
}

var nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9]+`)

const classifyPrompt = `You are a GST grievance classification specialist. Assign the grievance below to the taxonomy.

CATEGORIES:
%s

Pick exactly one primary_category from the list, optionally secondary_categories from the same list, and report a confidence score between 0 and 1 for every category you assign.

GRIEVANCE: %s`

// Classifier resolves the grievance category, preferring a validated user
// selection over a model call.
type Classifier struct {
	aiClient ai.TaxAIClient

	normalized map[string]string
}

// NewClassifierParams configures a Classifier. A nil AIClient limits it to
// validating user-selected categories.
type NewClassifierParams struct {
	AIClient ai.TaxAIClient
}

func NewClassifier(params NewClassifierParams) *Classifier {
	normalized := make(map[string]string, len(Categories))
	for _, category := range Categories {
		normalized[normalizeCategory(category)] = category
	}
	return &Classifier{
		aiClient:   params.AIClient,
		normalized: normalized,
	}
}

// Classify returns the grievance classification. A non-empty selected
// category is validated against the taxonomy and wins over the model; an
// unrecognized selection degrades to the catch-all at half confidence.
// Without a selection the model classifies the cleaned text, and any model
// failure also degrades to the catch-all.
func (c *Classifier) Classify(ctx context.Context, cleanedText string, selected string) *common.Classification {
	if selected != "" {
		return c.fromSelection(selected)
	}

	if c.aiClient == nil {
		logger.Warn("[Classify] no model client and no user selection, using catch-all")
		return fallbackClassification()
	}

	var result common.Classification
	err := c.aiClient.GenerateCompletionWithFormat(
		ctx,
		"grievance_classification",
		"Primary and secondary grievance categories with confidence scores",
		fmt.Sprintf(classifyPrompt, strings.Join(Categories, "\n"), cleanedText),
		&result,
		ai.WithTemperature(0.1),
	)
	if err != nil {
		logger.Error("[Classify] model call failed", "err", err)
		return fallbackClassification()
	}

	if _, ok := c.normalized[normalizeCategory(result.PrimaryCategory)]; !ok {
		logger.Warn("[Classify] model returned unknown category", "category", result.PrimaryCategory)
		return fallbackClassification()
	}
	result.PrimaryCategory = c.normalized[normalizeCategory(result.PrimaryCategory)]

	logger.Info("[Classify] classified grievance",
		"primary", result.PrimaryCategory,
		"secondary", len(result.SecondaryCategories),
	)

	return &result
}

func (c *Classifier) fromSelection(selected string) *common.Classification {
	category, ok := c.normalized[normalizeCategory(selected)]
	confidence := 1.0
	if !ok {
		logger.Warn("[Classify] unrecognized category selection", "selected", selected)
		category = CategoryOthers
		confidence = 0.5
	}
	return &common.Classification{
		PrimaryCategory:  category,
		ConfidenceScores: map[string]float64{category: confidence},
	}
}

func fallbackClassification() *common.Classification {
	return &common.Classification{
		PrimaryCategory:  CategoryOthers,
		ConfidenceScores: map[string]float64{CategoryOthers: 0.5},
	}
}

func normalizeCategory(value string) string {
	return nonAlphanumericPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "")
}
