package preprocess

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/taxmitra/grievance/pkg/ai"
)

// fakeAIClient unmarshals a canned JSON payload into the output target.
type fakeAIClient struct {
	payload   string
	formatErr error
}

func (f *fakeAIClient) GenerateCompletion(_ context.Context, _ string, _ ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAIClient) GenerateCompletionWithFormat(_ context.Context, _, _, _ string, out any, _ ...ai.GenerateOption) error {
	if f.formatErr != nil {
		return f.formatErr
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func (f *fakeAIClient) GenerateEmbedding(_ context.Context, _ []byte) ([]float32, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAIClient) ResetMetrics() {}

func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestPreprocessorStructuredOutput(t *testing.T) {
	client := &fakeAIClient{payload: `{
		"cleaned_text": "Late fee charged on GSTR-3B despite filing on time",
		"detected_intent": "error_resolution",
		"issues": [{"issue_text": "Late fee charged despite timely filing", "keywords": ["late fee", "GSTR-3B"], "priority": 1}],
		"entities": [{"entity_type": "form", "value": "GSTR-3B"}],
		"language": "en"
	}`}
	pre := NewPreprocessor(NewPreprocessorParams{AIClient: client})

	result, err := pre.Process(context.Background(), "late fee chargd on gstr3b but i filed on time")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DetectedIntent != "error_resolution" {
		t.Fatalf("unexpected intent %q", result.DetectedIntent)
	}
	if len(result.Issues) != 1 || result.Issues[0].IssueText != "Late fee charged despite timely filing" {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}
	if len(result.Entities) != 1 || result.Entities[0].Value != "GSTR-3B" {
		t.Fatalf("unexpected entities %+v", result.Entities)
	}
}

func TestPreprocessorDegradesOnModelError(t *testing.T) {
	client := &fakeAIClient{formatErr: errors.New("model overloaded")}
	pre := NewPreprocessor(NewPreprocessorParams{AIClient: client})

	result, err := pre.Process(context.Background(), "cannot file GSTR-1")
	if err == nil {
		t.Fatalf("expected degraded-result error")
	}
	if result == nil {
		t.Fatalf("degraded result must still be usable")
	}
	if result.CleanedText != "cannot file GSTR-1" {
		t.Fatalf("expected raw query as cleaned text, got %q", result.CleanedText)
	}
	if len(result.Issues) != 1 || result.Issues[0].IssueText != "cannot file GSTR-1" {
		t.Fatalf("expected raw query as single issue, got %+v", result.Issues)
	}
	if result.DetectedIntent != "informational" || result.Language != "en" {
		t.Fatalf("unexpected degraded defaults: %+v", result)
	}
}

func TestPreprocessorNilClient(t *testing.T) {
	pre := NewPreprocessor(NewPreprocessorParams{})
	result, err := pre.Process(context.Background(), "query text")
	if err == nil || result == nil {
		t.Fatalf("expected degraded result with error, got %+v / %v", result, err)
	}
}

func TestPreprocessorFillsEmptyFields(t *testing.T) {
	client := &fakeAIClient{payload: `{"detected_intent": "procedural"}`}
	pre := NewPreprocessor(NewPreprocessorParams{AIClient: client})

	result, err := pre.Process(context.Background(), "how to file GSTR-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CleanedText != "how to file GSTR-9" {
		t.Fatalf("expected raw query backfill, got %q", result.CleanedText)
	}
	if len(result.Issues) != 1 || result.Language != "en" {
		t.Fatalf("expected backfilled issue and language, got %+v", result)
	}
}

func TestClassifierUserSelection(t *testing.T) {
	classifier := NewClassifier(NewClassifierParams{})

	cls := classifier.Classify(context.Background(), "text", "Penalty Notice")
	if cls.PrimaryCategory != "penalty_notice" {
		t.Fatalf("expected normalized selection match, got %q", cls.PrimaryCategory)
	}
	if cls.ConfidenceScores["penalty_notice"] != 1.0 {
		t.Fatalf("expected full confidence for a validated selection, got %v", cls.ConfidenceScores)
	}

	cls = classifier.Classify(context.Background(), "text", "not a category")
	if cls.PrimaryCategory != CategoryOthers {
		t.Fatalf("expected catch-all for unknown selection, got %q", cls.PrimaryCategory)
	}
	if cls.ConfidenceScores[CategoryOthers] != 0.5 {
		t.Fatalf("expected half confidence for unknown selection, got %v", cls.ConfidenceScores)
	}
}

func TestClassifierModelPath(t *testing.T) {
	client := &fakeAIClient{payload: `{
		"primary_category": "refund",
		"secondary_categories": ["portal_error"],
		"confidence_scores": {"refund": 0.9, "portal_error": 0.4}
	}`}
	classifier := NewClassifier(NewClassifierParams{AIClient: client})

	cls := classifier.Classify(context.Background(), "refund stuck on portal", "")
	if cls.PrimaryCategory != "refund" {
		t.Fatalf("expected model classification, got %q", cls.PrimaryCategory)
	}
	if len(cls.SecondaryCategories) != 1 || cls.SecondaryCategories[0] != "portal_error" {
		t.Fatalf("unexpected secondary categories %v", cls.SecondaryCategories)
	}
}

func TestClassifierModelFailure(t *testing.T) {
	client := &fakeAIClient{formatErr: errors.New("bad output")}
	classifier := NewClassifier(NewClassifierParams{AIClient: client})

	cls := classifier.Classify(context.Background(), "text", "")
	if cls.PrimaryCategory != CategoryOthers {
		t.Fatalf("expected catch-all on model failure, got %q", cls.PrimaryCategory)
	}
}

func TestClassifierUnknownModelCategory(t *testing.T) {
	client := &fakeAIClient{payload: `{"primary_category": "customs_duty"}`}
	classifier := NewClassifier(NewClassifierParams{AIClient: client})

	cls := classifier.Classify(context.Background(), "text", "")
	if cls.PrimaryCategory != CategoryOthers {
		t.Fatalf("expected catch-all for out-of-taxonomy category, got %q", cls.PrimaryCategory)
	}
}
