package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

const reasoningRelevanceScore = 0.8

const reasoningSystemPrompt = `You are a GST expert providing reasoning and insights for complex GST issues.
Focus on:
1. Root cause analysis
2. Regulatory references
3. Practical solutions
4. Prevention strategies
5. Related compliance requirements

Be thorough but concise. Provide actionable insights based on GST laws and procedures.`

// ReasoningRetriever synthesizes expert analysis for the extracted issues
// with a single batched model call.
type ReasoningRetriever struct {
	aiClient ai.TaxAIClient
}

// NewReasoningRetrieverParams configures a ReasoningRetriever. A nil
// AIClient produces a retriever that always returns no evidence.
type NewReasoningRetrieverParams struct {
	AIClient ai.TaxAIClient
}

func NewReasoningRetriever(params NewReasoningRetrieverParams) *ReasoningRetriever {
	return &ReasoningRetriever{aiClient: params.AIClient}
}

// Retrieve analyses all issues in one request and splits the response into
// per-issue evidence. When the response cannot be split, the whole analysis
// is returned as a single combined evidence entry. Any failure yields an
// empty result, never an error.
func (r *ReasoningRetriever) Retrieve(
	ctx context.Context,
	issues []common.GrievanceIssue,
	entities []common.ExtractedEntity,
) []common.Evidence {
	if r.aiClient == nil {
		logger.Warn("[ReasoningRetriever] model client not available")
		return nil
	}
	if len(issues) == 0 {
		return nil
	}

	prompt := buildBatchedPrompt(issues, buildEntityContext(entities))

	response, err := r.aiClient.GenerateCompletion(ctx, prompt,
		ai.WithSystemPrompts(reasoningSystemPrompt),
	)
	if err != nil {
		logger.Error("[ReasoningRetriever] model call failed", "err", err)
		return nil
	}

	combined := strings.TrimSpace(response)
	if combined == "" {
		logger.Warn("[ReasoningRetriever] empty model response")
		return nil
	}

	analyses := SplitCombinedAnalysis(combined, len(issues))

	results := make([]common.Evidence, 0, len(analyses))
	for idx, analysis := range analyses {
		if strings.TrimSpace(analysis) == "" || idx >= len(issues) {
			continue
		}
		results = append(results, common.Evidence{
			SourceKind:     common.SourceReasoning,
			Content:        formatIssueAnalysis(issues[idx], idx, analysis),
			Citation:       fmt.Sprintf("Reasoning LLM Analysis - Issue %d", idx+1),
			RelevanceScore: reasoningRelevanceScore,
		})
	}

	if len(results) == 0 {
		results = append(results, common.Evidence{
			SourceKind:     common.SourceReasoning,
			Content:        formatCombinedAnalysis(issues, combined),
			Citation:       "Reasoning LLM Analysis - Combined",
			RelevanceScore: reasoningRelevanceScore,
		})
	}

	logger.Info("[ReasoningRetriever] retrieved analyses", "count", len(results), "issues", len(issues))

	return results
}

func buildEntityContext(entities []common.ExtractedEntity) string {
	if len(entities) == 0 {
		return "No specific entities identified."
	}

	parts := make([]string, 0, len(entities)*2)
	for _, entity := range entities {
		parts = append(parts, fmt.Sprintf("%s: %s", entity.EntityType, entity.Value))
		if entity.Context != "" {
			parts = append(parts, "  Context: "+entity.Context)
		}
	}
	return strings.Join(parts, "\n")
}

func buildBatchedPrompt(issues []common.GrievanceIssue, entityContext string) string {
	parts := []string{
		fmt.Sprintf("Analyze %d GST issues and provide expert reasoning for each:", len(issues)),
		"",
		"ENTITY CONTEXT:",
		entityContext,
		"",
	}

	for idx, issue := range issues {
		parts = append(parts,
			fmt.Sprintf("ISSUE #%d:", idx+1),
			"Issue: "+issue.IssueText,
			"Keywords: "+strings.Join(issue.Keywords, ", "),
			fmt.Sprintf("Priority: %d", issue.Priority),
			"",
		)
	}

	parts = append(parts,
		"Please provide comprehensive analysis for EACH issue above in order, including:",
		"1. Root cause analysis",
		"2. Regulatory implications",
		"3. Recommended solutions",
		"4. Preventive measures",
		"",
		"Format your response with clear separation for each issue (e.g., 'Issue #1 Analysis:', 'Issue #2 Analysis:', etc.).",
	)

	return strings.Join(parts, "\n")
}

func formatIssueAnalysis(issue common.GrievanceIssue, idx int, analysis string) string {
	cleaned := trimMarkdownEdges(analysis)
	parts := []string{
		fmt.Sprintf("**Core Issue %d**: %s", idx+1, issue.IssueText),
		fmt.Sprintf("**Priority**: %d", issue.Priority),
		"**Keywords**: " + strings.Join(issue.Keywords, ", "),
		"",
		"**LLM Analysis:**",
		cleaned,
	}
	return strings.Join(parts, "\n")
}

func formatCombinedAnalysis(issues []common.GrievanceIssue, combined string) string {
	parts := make([]string, 0, len(issues)*4+2)
	for idx, issue := range issues {
		parts = append(parts,
			fmt.Sprintf("**Core Issue %d**: %s", idx+1, issue.IssueText),
			fmt.Sprintf("**Priority**: %d", issue.Priority),
			"**Keywords**: "+strings.Join(issue.Keywords, ", "),
			"",
		)
	}
	parts = append(parts, "**Combined LLM Analysis:**", trimMarkdownEdges(combined))
	return strings.Join(parts, "\n")
}

// trimMarkdownEdges strips bold markers wrapping the whole analysis so the
// rendered content does not start mid-emphasis.
func trimMarkdownEdges(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "**") {
		s = strings.TrimSpace(s[2:])
	}
	if strings.HasSuffix(s, "**") {
		s = strings.TrimSpace(s[:len(s)-2])
	}
	return s
}
