package retrieval

import (
	"regexp"
	"strings"
)

// Model output rarely follows the requested "Issue #N Analysis:" layout
// exactly, so splitting tries a cascade of separators from most to least
// specific before falling back to equal portions.
var splitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Issue\s*#\d+\s*:`),
	regexp.MustCompile(`(?i)Issue\s*#\d+\s*Analysis:`),
	regexp.MustCompile(`(?i)Analysis\s+for\s+Issue\s*#\d+`),
	regexp.MustCompile(`\n\n\d+\.\s`),
	regexp.MustCompile(`(?i)Issue\s+\d+\s*:`),
	regexp.MustCompile(`(?i)I\s*\d+[:.]`),
	regexp.MustCompile(`\n\n•\s`),
	regexp.MustCompile(`\n\n-\s`),
	regexp.MustCompile(`\n\n`),
}

var markdownHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\*\*[^*]+\*\*`),
	regexp.MustCompile(`^#+\s*\w+`),
}

// Parts shorter than this are treated as formatting artifacts.
const minAnalysisPartLen = 50

// minEqualChunkSize bounds the fallback portion size from below.
const minEqualChunkSize = 300

// SplitCombinedAnalysis divides one batched model response into per-issue
// analyses. It returns at most expected parts; callers must handle fewer.
func SplitCombinedAnalysis(combined string, expected int) []string {
	cleaned := strings.TrimSpace(combined)
	if cleaned == "" || expected <= 0 {
		return nil
	}

	for _, pattern := range splitPatterns {
		parts := splitAndFilter(pattern, cleaned)
		if len(parts) >= expected {
			return parts[:expected]
		}
	}

	for _, header := range markdownHeaderPatterns {
		parts := splitByHeaders(header, cleaned)
		if len(parts) >= expected {
			return parts[:expected]
		}
	}

	return splitEqualPortions(cleaned, expected)
}

func splitAndFilter(pattern *regexp.Regexp, text string) []string {
	raw := pattern.Split(text, -1)
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if len(part) > minAnalysisPartLen {
			parts = append(parts, part)
		}
	}
	return parts
}

func splitByHeaders(header *regexp.Regexp, text string) []string {
	var parts []string
	var current []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(current, "\n"))
		if len(content) > minAnalysisPartLen {
			parts = append(parts, content)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if header.MatchString(line) && len(current) > 0 {
			flush()
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		flush()
	}
	return parts
}

func splitEqualPortions(text string, expected int) []string {
	chunkSize := len(text) / expected
	if chunkSize < minEqualChunkSize {
		chunkSize = minEqualChunkSize
	}

	chunks := make([]string, 0, expected)
	for i := 0; i < len(text); i += chunkSize {
		end := i + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[i:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	if len(chunks) > expected {
		chunks = chunks[:expected]
	}
	return chunks
}
