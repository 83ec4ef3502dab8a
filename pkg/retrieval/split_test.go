package retrieval

import (
	"strings"
	"testing"
)

const filler = "This paragraph carries enough substance to clear the artifact filter easily."

func TestSplitCombinedAnalysisPrimaryPattern(t *testing.T) {
	text := "Issue #1: " + filler + "\nIssue #2: " + filler + "\nIssue #3: " + filler
	parts := SplitCombinedAnalysis(text, 3)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	for _, part := range parts {
		if strings.Contains(part, "Issue #") {
			t.Fatalf("separator leaked into part: %q", part)
		}
	}
}

func TestSplitCombinedAnalysisNumberedList(t *testing.T) {
	text := "Overview line before the list that is long enough to count as content.\n\n1. " +
		filler + "\n\n2. " + filler
	parts := SplitCombinedAnalysis(text, 2)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
}

func TestSplitCombinedAnalysisDropsShortArtifacts(t *testing.T) {
	text := "Issue #1: ok\nIssue #2: " + filler + "\nIssue #3: " + filler
	parts := SplitCombinedAnalysis(text, 2)
	if len(parts) != 2 {
		t.Fatalf("expected the short artifact dropped, got %d parts", len(parts))
	}
	if strings.Contains(parts[0], "ok") {
		t.Fatalf("artifact survived: %q", parts[0])
	}
}

func TestSplitCombinedAnalysisMarkdownHeaders(t *testing.T) {
	// No issue markers at all, but bold headers delimit the sections. The
	// sections must not contain double newlines or the paragraph pattern
	// splits them first.
	text := "**Root Cause**\n" + filler + "\n" + filler +
		"\n**Second Topic**\n" + filler + "\n" + filler
	parts := SplitCombinedAnalysis(text, 2)
	if len(parts) != 2 {
		t.Fatalf("expected 2 header-delimited parts, got %d", len(parts))
	}
	if !strings.HasPrefix(parts[1], "**Second Topic**") {
		t.Fatalf("expected header retained in part, got %q", parts[1])
	}
}

func TestSplitCombinedAnalysisEqualPortionsFallback(t *testing.T) {
	text := strings.Repeat("x", 700)
	parts := SplitCombinedAnalysis(text, 2)
	if len(parts) != 2 {
		t.Fatalf("expected 2 equal portions, got %d", len(parts))
	}
	if len(parts[0]) != 350 {
		t.Fatalf("expected 350-byte portions, got %d", len(parts[0]))
	}
}

func TestSplitCombinedAnalysisEmpty(t *testing.T) {
	if parts := SplitCombinedAnalysis("   ", 3); parts != nil {
		t.Fatalf("expected nil for blank input, got %v", parts)
	}
}
