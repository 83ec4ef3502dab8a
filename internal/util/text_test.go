package util

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizePostgresText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain utf8",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "contains null byte",
			input: "hel\x00lo",
			want:  "hello",
		},
		{
			name:  "contains invalid utf8",
			input: string([]byte{'a', 0xff, 'b'}),
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizePostgresText(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected sanitized value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no markup",
			input: "GSTR-3B  late   fee",
			want:  "GSTR-3B late fee",
		},
		{
			name:  "tags removed",
			input: "<p>GST <b>portal</b> error</p>",
			want:  "GST portal error",
		},
		{
			name:  "nested markup",
			input: "<div><span>refund</span> <a href=\"x\">status</a></div>",
			want:  "refund status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripHTML(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected stripped text: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	s := strings.Repeat("ल", 10) // 3 bytes per rune

	got := TruncateRunes(s, 100)
	if got != s {
		t.Fatalf("short input must pass through, got %q", got)
	}

	got = TruncateRunes(s, 8)
	if len(got) != 6 {
		t.Fatalf("expected cut back to rune boundary at 6 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid utf8: %q", got)
	}

	got = TruncateRunes("abcdef", 4)
	if got != "abcd" {
		t.Fatalf("ascii cut must use the full limit, got %q", got)
	}
}

func TestTruncateWords(t *testing.T) {
	s := "late fee waiver for GSTR-3B filing"

	got := TruncateWords(s, 100)
	if got != s {
		t.Fatalf("short input must pass through, got %q", got)
	}

	got = TruncateWords(s, 20)
	if len(got) > 20 {
		t.Fatalf("truncated text exceeds limit: %d bytes", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Fatalf("truncated text has trailing space: %q", got)
	}
	if got != "late fee waiver for" {
		t.Fatalf("expected cut at word boundary, got %q", got)
	}

	got = TruncateWords("abcdefghij", 5)
	if got != "abcde" {
		t.Fatalf("expected hard cut without boundary, got %q", got)
	}

	got = TruncateWords(strings.Repeat("श", 20), 10)
	if !utf8.ValidString(got) {
		t.Fatalf("boundary-less multibyte cut is not valid utf8: %q", got)
	}
}

func TestTruncateHard(t *testing.T) {
	s := strings.Repeat("x", 500)

	got := TruncateHard(s, 400)
	if len(got) != 400 {
		t.Fatalf("expected exactly 400 bytes, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got[len(got)-5:])
	}

	if TruncateHard("short", 400) != "short" {
		t.Fatal("short input must pass through")
	}

	got = TruncateHard(strings.Repeat("क", 200), 400)
	if !utf8.ValidString(got) {
		t.Fatalf("multibyte hard truncation is not valid utf8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatal("expected ellipsis suffix on multibyte truncation")
	}
}
