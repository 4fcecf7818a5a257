package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short text untouched", "hello world", 64, "hello world"},
		{"cuts at word boundary", "the quick brown fox jumps", 18, "the quick brown..."},
		{"never mid word", "alpha beta gamma", 13, "alpha beta..."},
		{"single long word", "supercalifragilistic", 10, "superca..."},
		{"zero max", "anything", 0, "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWords(tt.text, tt.max)
			if got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
			if tt.max > 0 && len(got) > tt.max {
				t.Errorf("result %q exceeds max %d", got, tt.max)
			}
		})
	}
}

func TestTruncateWordsMultiByteStaysValidUTF8(t *testing.T) {
	text := "die schrödingergleichung beschreibt die zeitentwicklung über wellenfunktionen"
	for max := 1; max <= utf8.RuneCountInString(text); max++ {
		got := TruncateWords(text, max)
		if !utf8.ValidString(got) {
			t.Fatalf("max=%d produced invalid UTF-8: %q", max, got)
		}
		if utf8.RuneCountInString(got) > max {
			t.Fatalf("max=%d result %q exceeds the rune budget", max, got)
		}
	}
}

func TestTruncateWordsNeverSplitsWords(t *testing.T) {
	text := "chunked media generation pipeline orchestration"
	words := map[string]struct{}{}
	for _, w := range strings.Fields(text) {
		words[w] = struct{}{}
	}
	for max := 5; max < len(text); max++ {
		got := TruncateWords(text, max)
		trimmed := strings.TrimSuffix(got, "...")
		for _, w := range strings.Fields(trimmed) {
			if _, ok := words[w]; !ok && len(strings.Fields(trimmed)) > 1 {
				t.Fatalf("max=%d produced split word %q in %q", max, w, got)
			}
		}
	}
}
