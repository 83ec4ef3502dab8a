package resolve

import (
	"fmt"
	"strings"

	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

const escalationNotice = "**ESCALATION REQUIRED**: This case requires escalation to L2 support due to complexity. However, here is the preliminary analysis and guidance:\n\n"

const noInformationAnswer = "I apologize, but I don't have sufficient information to provide a preliminary analysis for your query."

// BuildFinalResponse renders the resolver output into the user-facing
// answer. A nil resolver or bundle yields an apologetic degraded response
// flagged for manual review.
func BuildFinalResponse(resolver *common.ResolverOutput, bundle *common.EvidenceBundle) *common.FinalResponse {
	if resolver == nil {
		logger.Error("[Respond] no resolver output available")
		return &common.FinalResponse{
			DirectAnswer:         "I apologize, but I encountered an error while processing your query. Please try again.",
			ConfidenceScore:      0,
			RequiresManualReview: true,
		}
	}
	if bundle == nil {
		logger.Error("[Respond] no retrieval output available")
		return &common.FinalResponse{
			DirectAnswer:         "I apologize, but I couldn't retrieve relevant information for your query.",
			ConfidenceScore:      0,
			RequiresManualReview: true,
		}
	}

	var parts []string
	for _, res := range resolver.Resolutions {
		parts = append(parts, renderResolution(res))
	}

	notice := ""
	if resolver.RequiresEscalation {
		notice = escalationNotice
	}

	answer := notice + noInformationAnswer
	if len(parts) > 0 {
		answer = notice + strings.Join(parts, "\n\n")
	}

	response := &common.FinalResponse{
		DirectAnswer:         answer,
		AdditionalResources:  buildResources(bundle),
		ConfidenceScore:      resolver.OverallConfidence,
		RequiresManualReview: resolver.RequiresEscalation,
	}

	logger.Info("[Respond] response generated",
		"answer_len", len(response.DirectAnswer),
		"confidence", response.ConfidenceScore,
		"manual_review", response.RequiresManualReview,
	)

	return response
}

func renderResolution(res common.IssueResolution) string {
	var b strings.Builder

	upper := strings.ToUpper(res.Issue)
	if strings.Contains(upper, "COMPREHENSIVE RESOLUTION") || strings.Contains(upper, "UNIFIED") {
		b.WriteString("**Comprehensive Resolution**:\n\n")
	} else {
		b.WriteString("**Resolution**:\n\n")
	}

	switch {
	case res.Resolution != nil:
		b.WriteString(*res.Resolution + "\n\n")
	case res.ReasonForNull != "":
		b.WriteString("**Status**: Requires further investigation - " + res.ReasonForNull + "\n\n")
	default:
		b.WriteString("**Status**: Requires further investigation due to insufficient information.\n\n")
	}

	if len(res.LegalBasis) > 0 {
		b.WriteString("**Legal Basis**: " + strings.Join(res.LegalBasis, "; ") + "\n\n")
	}

	b.WriteString(fmt.Sprintf("**Confidence**: %d%%\n", res.Confidence))

	if len(res.SourceCitations) > 0 {
		citations := res.SourceCitations
		if len(citations) > 3 {
			citations = citations[:3]
		}
		b.WriteString("\n**Sources**: " + strings.Join(citations, ", ") + "\n")
	}

	return b.String()
}

func buildResources(bundle *common.EvidenceBundle) []string {
	var resources []string
	if len(bundle.Local) > 0 {
		resources = append(resources, "Knowledge base documentation")
	}
	if len(bundle.Web) > 0 {
		resources = append(resources, "Official GST portals")
	}
	if len(bundle.Social) > 0 {
		resources = append(resources, "Recent GSTN updates")
	}
	return resources
}
