package resolve

import (
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
)

// MinConfidence is the escalation gate threshold. Resolutions scoring below
// it are withheld and the grievance is escalated to a human agent.
const MinConfidence = 95

// ApplyGate withholds every resolution below the confidence threshold. The
// model is instructed to do this itself, but its output is not trusted: the
// gate is re-applied on the parsed struct. Resolutions at exactly the
// threshold pass untouched.
func (r *Resolver) ApplyGate(out *common.ResolverOutput) {
	if out == nil {
		return
	}

	gated := 0
	for i := range out.Resolutions {
		res := &out.Resolutions[i]
		if res.Confidence >= r.minConf {
			continue
		}
		if res.Resolution != nil {
			res.Resolution = nil
			gated++
		}
		if res.ReasonForNull == "" {
			res.ReasonForNull = "Confidence below the resolution threshold, escalation required."
		}
		out.RequiresEscalation = true
	}

	if out.OverallConfidence < r.minConf {
		out.RequiresEscalation = true
	}

	if gated > 0 {
		logger.Warn("[Resolver] withheld low-confidence resolutions", "count", gated, "threshold", r.minConf)
	}
}
