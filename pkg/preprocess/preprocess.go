// Package preprocess turns raw grievance text into structured issues,
// entities, and a category classification for the retrieval stages.
package preprocess

import (
	"context"
	"fmt"

	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

const preprocessPrompt = `You are a GST (Goods and Services Tax) preprocessing specialist. Your task is to clean and analyze the user's query.

ANALYSIS TASKS:
1. Clean the text - remove typos, expand abbreviations, fix grammar
2. Detect the primary intent of the query
3. Extract core issues (problems the user is facing)
4. Identify key entities (GSTIN, dates, amounts, form numbers, etc.)
5. Detect the language

INTENTS TO CONSIDER:
- informational: User wants information about a GST topic
- procedural: User wants to know how to do something
- error_resolution: User is facing an error or problem
- compliance_clarification: User wants clarification on compliance requirements
- refund_status: User asking about refund status

EXAMPLE CORE ISSUES:
- "Cannot file GSTR-1 due to validation error"
- "Need to know due date for GSTR-3B filing"
- "GST registration portal not working"
- "Confusion about input tax credit claim"

ENTITIES TO EXTRACT:
- GSTIN numbers
- Form names/numbers (GSTR-1, GSTR-3B, etc.)
- Dates and periods
- Amounts
- Error codes
- Portal/system names

USER QUERY: %s`

// Preprocessor extracts structure from a raw grievance with one schema
// constrained model call.
type Preprocessor struct {
	aiClient ai.TaxAIClient
}

// NewPreprocessorParams configures a Preprocessor.
type NewPreprocessorParams struct {
	AIClient ai.TaxAIClient
}

func NewPreprocessor(params NewPreprocessorParams) *Preprocessor {
	return &Preprocessor{aiClient: params.AIClient}
}

// Process analyzes the query. The result is always usable: when the model
// is unavailable or fails, a degraded result carrying the raw query as its
// single issue is returned together with the error.
func (p *Preprocessor) Process(ctx context.Context, query string) (*common.PreprocessResult, error) {
	if p.aiClient == nil {
		logger.Error("[Preprocess] model client not initialized")
		return degradedResult(query), fmt.Errorf("preprocessing model not initialized")
	}

	var result common.PreprocessResult
	err := p.aiClient.GenerateCompletionWithFormat(
		ctx,
		"grievance_preprocessing",
		"Cleaned text, intent, core issues, entities, and language of a GST grievance",
		fmt.Sprintf(preprocessPrompt, query),
		&result,
		ai.WithTemperature(0.1),
	)
	if err != nil {
		logger.Error("[Preprocess] model call failed", "err", err)
		return degradedResult(query), fmt.Errorf("preprocessing failed: %w", err)
	}

	if result.CleanedText == "" {
		result.CleanedText = query
	}
	if len(result.Issues) == 0 {
		result.Issues = []common.GrievanceIssue{{IssueText: query, Keywords: []string{"query"}, Priority: 1}}
	}
	if result.Language == "" {
		result.Language = "en"
	}

	logger.Info("[Preprocess] analysis complete",
		"issues", len(result.Issues),
		"entities", len(result.Entities),
		"intent", result.DetectedIntent,
		"language", result.Language,
	)

	return &result, nil
}

// degradedResult keeps the pipeline moving when preprocessing fails: the
// raw query becomes the single issue so retrieval still has something to
// work with.
func degradedResult(query string) *common.PreprocessResult {
	return &common.PreprocessResult{
		CleanedText:    query,
		DetectedIntent: "informational",
		Issues: []common.GrievanceIssue{
			{IssueText: query, Keywords: []string{"query"}, Priority: 1},
		},
		Language: "en",
	}
}
