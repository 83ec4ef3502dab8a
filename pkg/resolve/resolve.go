// Package resolve synthesizes a confidence-scored resolution from the
// retrieved evidence and enforces the escalation gate.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

// Context budgets per source kind when formatting evidence for the model.
const (
	contextMaxLocal     = 5
	contextMaxWeb       = 3
	contextMaxSocial    = 3
	contextMaxReasoning = 2
)

const resolverPrompt = `You are an expert L1 GST (Goods & Services Tax) grievance resolution specialist.
The user has filed a ticket with GSTN and you are responding to their ACTIVE TICKET as the first-line support agent.

TICKET CONTEXT
USER QUERY: %s
CORE ISSUES IDENTIFIED: %s
DETECTED INTENT: %s
ISSUE CATEGORY: %s

AVAILABLE INFORMATION:
%s

CRITICAL CONSTRAINTS:
- DO NOT ask the user to file a grievance ticket, THIS IS the ticket response
- DO NOT claim backend system access or modification capabilities
- DO NOT promise manual overrides or administrative tagging
- DO provide direct troubleshooting steps within the current ticket workflow
- DO provide comprehensive legal grounding with actual citations
- DO guide the user on updating THIS TICKET with additional information if needed

RESPONSE REQUIREMENTS:
Address ALL core issues in one unified resolution covering: issue summary,
root cause analysis, legal and statutory basis (specific CGST/SGST/IGST Act
sections, rules, notification numbers with dates), numbered resolution steps
with exact portal navigation paths, alternative solutions, a required
documentation checklist, preventive guidance, and next steps within this
ticket.

CONFIDENCE SCORING:
95-100 requires a clear legal basis with specific citations, a documented
resolution procedure, and all necessary information present in the context.
Score lower when citations, procedures, or critical details are missing.

MINIMUM CONFIDENCE RULE:
If overall_confidence < %d, set the resolution field to null, set
reason_for_null with a detailed explanation, and set requires_escalation to
true. Report the actual confidence score either way.

The resolution field must contain the complete, markdown-formatted,
user-facing response ready to send to the taxpayer.`

// Resolver produces a ResolverOutput from the evidence bundle with one
// schema-constrained model call.
type Resolver struct {
	aiClient ai.TaxAIClient
	minConf  int
}

// NewResolverParams configures a Resolver. MinConfidence <= 0 selects the
// default gate threshold.
type NewResolverParams struct {
	AIClient      ai.TaxAIClient
	MinConfidence int
}

func NewResolver(params NewResolverParams) *Resolver {
	minConf := params.MinConfidence
	if minConf <= 0 {
		minConf = MinConfidence
	}
	return &Resolver{
		aiClient: params.AIClient,
		minConf:  minConf,
	}
}

// Resolve synthesizes resolutions for the grievance. Failures never
// surface as errors to the caller: the fallback output carries zero
// confidence and forces escalation.
func (r *Resolver) Resolve(
	ctx context.Context,
	query string,
	pre *common.PreprocessResult,
	classification *common.Classification,
	bundle *common.EvidenceBundle,
) (*common.ResolverOutput, []string) {
	if r.aiClient == nil {
		logger.Error("[Resolver] model client not initialized")
		return escalationFallback(), []string{"Resolver model not initialized"}
	}
	if bundle == nil {
		logger.Error("[Resolver] no retrieval output available")
		return escalationFallback(), []string{"No retrieval output available"}
	}
	if pre == nil {
		logger.Error("[Resolver] no preprocessing output available")
		return escalationFallback(), []string{"No preprocessing output available"}
	}

	issueTexts := make([]string, 0, len(pre.Issues))
	for _, issue := range pre.Issues {
		issueTexts = append(issueTexts, issue.IssueText)
	}

	category := "general"
	if classification != nil {
		category = classification.PrimaryCategory
	}

	prompt := fmt.Sprintf(resolverPrompt,
		query,
		strings.Join(issueTexts, "; "),
		pre.DetectedIntent,
		category,
		formatEvidenceContext(bundle),
		r.minConf,
	)

	var out common.ResolverOutput
	err := r.aiClient.GenerateCompletionWithFormat(
		ctx,
		"grievance_resolution",
		"Unified resolution with confidence score and escalation flag",
		prompt,
		&out,
	)
	if err != nil {
		logger.Error("[Resolver] model call failed", "err", err)
		return escalationFallback(), []string{fmt.Sprintf("resolution failed: %v", err)}
	}

	r.ApplyGate(&out)

	logger.Info("[Resolver] resolution complete",
		"confidence", out.OverallConfidence,
		"escalation", out.RequiresEscalation,
		"resolutions", len(out.Resolutions),
	)

	return &out, nil
}

// formatEvidenceContext renders the bundle into the prompt context block,
// bounded per source kind.
func formatEvidenceContext(bundle *common.EvidenceBundle) string {
	var parts []string

	if len(bundle.Local) > 0 {
		parts = append(parts, "Local Knowledge Base:")
		for i, ev := range capEvidence(bundle.Local, contextMaxLocal) {
			parts = append(parts, fmt.Sprintf("%d. %s\n   Source: %s", i+1, ev.Content, ev.Citation))
		}
	}
	if len(bundle.Web) > 0 {
		parts = append(parts, "\nWeb Search Results:")
		for i, ev := range capEvidence(bundle.Web, contextMaxWeb) {
			parts = append(parts, fmt.Sprintf("%d. %s\n   Source: %s", i+1, ev.Content, ev.Citation))
		}
	}
	if len(bundle.Social) > 0 {
		parts = append(parts, "\nOfficial Feed Updates:")
		for _, ev := range capEvidence(bundle.Social, contextMaxSocial) {
			parts = append(parts, fmt.Sprintf("- %s (%s)", ev.Content, ev.Citation))
		}
	}
	if len(bundle.Reasoning) > 0 {
		parts = append(parts, "\nExpert Analysis:")
		for i, ev := range capEvidence(bundle.Reasoning, contextMaxReasoning) {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, ev.Content))
		}
	}

	if len(parts) == 0 {
		return "No supporting information was retrieved."
	}
	return strings.Join(parts, "\n")
}

func capEvidence(evidence []common.Evidence, max int) []common.Evidence {
	if len(evidence) > max {
		return evidence[:max]
	}
	return evidence
}

func escalationFallback() *common.ResolverOutput {
	return &common.ResolverOutput{
		Resolutions:        nil,
		OverallConfidence:  0,
		RequiresEscalation: true,
	}
}
