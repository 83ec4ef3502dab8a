// Package workflow runs the staged grievance resolution pipeline:
// preprocess, classify, retrieve, resolve, respond.
package workflow

import (
	"context"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/common"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/preprocess"
	"github.com/taxmitra/grievance/pkg/resolve"
	"github.com/taxmitra/grievance/pkg/retrieval"
)

// Result is the complete outcome of one pipeline run. Errors accumulates
// per-stage failures; the pipeline itself never aborts, every run produces
// a FinalResponse.
type Result struct {
	SessionID           string                   `json:"session_id"`
	Query               string                   `json:"query"`
	Preprocessing       *common.PreprocessResult `json:"preprocessing,omitempty"`
	Classification      *common.Classification   `json:"classification,omitempty"`
	Bundle              common.EvidenceBundle    `json:"bundle"`
	Resolver            *common.ResolverOutput   `json:"resolver,omitempty"`
	Response            *common.FinalResponse    `json:"response"`
	Errors              []string                 `json:"errors,omitempty"`
	EscalationRequested bool                     `json:"escalation_requested"`
	ProcessingTime      time.Duration            `json:"processing_time_ns"`
}

// Pipeline wires the stage implementations together.
type Pipeline struct {
	preprocessor *preprocess.Preprocessor
	classifier   *preprocess.Classifier
	orchestrator *retrieval.Orchestrator
	resolver     *resolve.Resolver
}

// NewPipelineParams configures a Pipeline. All stages are required; a nil
// stage degrades that stage's output rather than panicking.
type NewPipelineParams struct {
	Preprocessor *preprocess.Preprocessor
	Classifier   *preprocess.Classifier
	Orchestrator *retrieval.Orchestrator
	Resolver     *resolve.Resolver
}

func NewPipeline(params NewPipelineParams) *Pipeline {
	return &Pipeline{
		preprocessor: params.Preprocessor,
		classifier:   params.Classifier,
		orchestrator: params.Orchestrator,
		resolver:     params.Resolver,
	}
}

// Process runs the full pipeline for one grievance. sessionID may be empty,
// in which case a new one is generated. selectedCategory is the optional
// user-chosen category validated during classification.
func (p *Pipeline) Process(
	ctx context.Context,
	query string,
	sessionID string,
	selectedCategory string,
	progress util.ProgressFunc,
) *Result {
	if sessionID == "" {
		sessionID, _ = gonanoid.New()
	}

	result := &Result{
		SessionID: sessionID,
		Query:     query,
	}

	started := time.Now()
	logger.Info("[Workflow] starting grievance resolution", "session", sessionID)

	// Stage 1: preprocessing
	progress.Report("Cleaning and analyzing your query", 0.2)
	if p.preprocessor != nil {
		pre, err := p.preprocessor.Process(ctx, query)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		result.Preprocessing = pre
	} else {
		result.Errors = append(result.Errors, "Preprocessing stage not configured")
	}

	// Stage 2: classification
	progress.Report("Categorizing your GST issue", 0.4)
	if p.classifier != nil {
		cleaned := query
		if result.Preprocessing != nil {
			cleaned = result.Preprocessing.CleanedText
		}
		result.Classification = p.classifier.Classify(ctx, cleaned, selectedCategory)
	}

	// Stage 3: multi-source retrieval
	progress.Report("Searching knowledge bases and web", 0.6)
	if p.orchestrator != nil {
		bundle, errs := p.orchestrator.Retrieve(ctx, query, result.Preprocessing, result.Classification, progress)
		result.Bundle = bundle
		result.Errors = append(result.Errors, errs...)
	} else {
		result.Errors = append(result.Errors, "Retrieval stage not configured")
	}

	// Stage 4: resolution
	progress.Report("Analyzing information and generating resolution", 0.8)
	if p.resolver != nil {
		out, errs := p.resolver.Resolve(ctx, query, result.Preprocessing, result.Classification, &result.Bundle)
		result.Resolver = out
		result.Errors = append(result.Errors, errs...)
	} else {
		result.Errors = append(result.Errors, "Resolution stage not configured")
	}

	// Stage 5: escalation branch or response generation
	if result.Resolver != nil && result.Resolver.RequiresEscalation {
		progress.Report("Case requires manual escalation", 0.9)
		result.EscalationRequested = true
	}
	progress.Report("Formatting final response", 1.0)
	result.Response = resolve.BuildFinalResponse(result.Resolver, &result.Bundle)

	result.ProcessingTime = time.Since(started)

	logger.Info("[Workflow] grievance resolution finished",
		"session", sessionID,
		"confidence", result.Response.ConfidenceScore,
		"escalation", result.EscalationRequested,
		"errors", len(result.Errors),
		"duration", result.ProcessingTime,
	)

	return result
}
