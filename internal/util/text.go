package util

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// StripHTML removes markup from a provider snippet and collapses the
// remaining text into single-space separated words.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return collapseSpace(s)
	}

	var b strings.Builder
	b.Grow(len(s))

	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}

	return collapseSpace(b.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizePostgresText strips byte sequences postgres text columns reject.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// TruncateRunes shortens s to at most max bytes without splitting a rune.
// Grievance text arrives in several scripts, so byte slicing alone would
// produce invalid UTF-8.
func TruncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// TruncateWords shortens s to at most max bytes without splitting a word.
// When no word boundary exists inside the limit the text is cut at the
// nearest rune boundary.
func TruncateWords(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	cut := TruncateRunes(s, max)
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

// TruncateHard enforces a byte ceiling, marking the cut with an ellipsis.
func TruncateHard(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return TruncateRunes(s, max-3) + "..."
}
