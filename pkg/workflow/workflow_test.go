package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/ai"
	"github.com/taxmitra/grievance/pkg/preprocess"
	"github.com/taxmitra/grievance/pkg/resolve"
	"github.com/taxmitra/grievance/pkg/retrieval"
)

// fakeAIClient answers structured calls from a queue of payloads so one
// client can serve preprocessing and resolution in sequence.
type fakeAIClient struct {
	mu       sync.Mutex
	payloads []string
	failAll  bool
}

func (f *fakeAIClient) GenerateCompletion(_ context.Context, _ string, _ ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAIClient) GenerateCompletionWithFormat(_ context.Context, _, _, _ string, out any, _ ...ai.GenerateOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("model unavailable")
	}
	if len(f.payloads) == 0 {
		return errors.New("no payload queued")
	}
	payload := f.payloads[0]
	f.payloads = f.payloads[1:]
	return json.Unmarshal([]byte(payload), out)
}

func (f *fakeAIClient) GenerateEmbedding(_ context.Context, _ []byte) ([]float32, error) {
	return make([]float32, 8), nil
}

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

const preprocessPayload = `{
	"cleaned_text": "Late fee charged on GSTR-3B despite timely filing",
	"detected_intent": "error_resolution",
	"issues": [{"issue_text": "Late fee charged despite timely filing", "keywords": ["late fee"], "priority": 1}],
	"entities": [{"entity_type": "form", "value": "GSTR-3B"}],
	"language": "en"
}`

const resolvePayload = `{
	"resolutions": [{
		"issue": "COMPREHENSIVE RESOLUTION FOR ALL ISSUES",
		"resolution": "File Form DRC-03A via Services.",
		"confidence": 96,
		"legal_basis": ["Section 47 CGST Act"]
	}],
	"overall_confidence": 96,
	"requires_escalation": false
}`

func newTestPipeline(client *fakeAIClient) *Pipeline {
	return NewPipeline(NewPipelineParams{
		Preprocessor: preprocess.NewPreprocessor(preprocess.NewPreprocessorParams{AIClient: client}),
		Classifier:   preprocess.NewClassifier(preprocess.NewClassifierParams{}),
		Orchestrator: retrieval.NewOrchestrator(retrieval.NewOrchestratorParams{}),
		Resolver:     resolve.NewResolver(resolve.NewResolverParams{AIClient: client}),
	})
}

func TestPipelineEndToEnd(t *testing.T) {
	client := &fakeAIClient{payloads: []string{preprocessPayload, resolvePayload}}
	pipeline := newTestPipeline(client)

	var mu sync.Mutex
	fractions := map[float64]bool{}
	progress := util.ProgressFunc(func(stage string, fraction float64) {
		mu.Lock()
		defer mu.Unlock()
		fractions[fraction] = true
	})

	result := pipeline.Process(context.Background(), "late fee on GSTR-3B", "", "Penalty Notice", progress)

	if result.SessionID == "" {
		t.Fatalf("expected generated session id")
	}
	if result.Response == nil || result.Response.ConfidenceScore != 96 {
		t.Fatalf("unexpected response %+v", result.Response)
	}
	if result.EscalationRequested {
		t.Fatalf("no escalation expected at confidence 96")
	}
	if result.Classification == nil || result.Classification.PrimaryCategory != "penalty_notice" {
		t.Fatalf("expected validated user category, got %+v", result.Classification)
	}
	if result.ProcessingTime <= 0 {
		t.Fatalf("expected wall-clock processing time")
	}
	for _, want := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
		if !fractions[want] {
			t.Fatalf("missing stage milestone %v, got %v", want, fractions)
		}
	}
	if fractions[0.9] {
		t.Fatalf("escalation milestone must not fire on success")
	}
}

func TestPipelineEscalationBranch(t *testing.T) {
	// Resolver model fails, forcing the zero-confidence escalation path.
	client := &fakeAIClient{payloads: []string{preprocessPayload}}
	pipeline := newTestPipeline(client)

	var mu sync.Mutex
	fractions := map[float64]bool{}
	progress := util.ProgressFunc(func(stage string, fraction float64) {
		mu.Lock()
		defer mu.Unlock()
		fractions[fraction] = true
	})

	result := pipeline.Process(context.Background(), "query", "sess-1", "", progress)

	if result.SessionID != "sess-1" {
		t.Fatalf("expected caller session id kept, got %q", result.SessionID)
	}
	if !result.EscalationRequested {
		t.Fatalf("expected escalation")
	}
	if !fractions[0.9] {
		t.Fatalf("expected escalation milestone, got %v", fractions)
	}
	if result.Response == nil || !result.Response.RequiresManualReview {
		t.Fatalf("expected manual-review response, got %+v", result.Response)
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected recorded resolver error")
	}
}

func TestPipelineNeverPanicsFullyDegraded(t *testing.T) {
	client := &fakeAIClient{failAll: true}
	pipeline := newTestPipeline(client)

	result := pipeline.Process(context.Background(), "query", "", "", nil)

	if result.Response == nil {
		t.Fatalf("fully degraded run must still produce a response")
	}
	if !result.Response.RequiresManualReview {
		t.Fatalf("degraded response must require manual review")
	}
	if len(result.Errors) < 2 {
		t.Fatalf("expected accumulated stage errors, got %v", result.Errors)
	}
	joined := strings.Join(result.Errors, " | ")
	if !strings.Contains(joined, "preprocessing failed") {
		t.Fatalf("expected preprocessing error recorded, got %v", result.Errors)
	}
}
