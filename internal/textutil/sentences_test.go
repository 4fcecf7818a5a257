package textutil

import (
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"basic",
			"First sentence. Second one! Third?",
			[]string{"First sentence.", "Second one!", "Third?"},
		},
		{
			"no terminator",
			"a trailing fragment without punctuation",
			[]string{"a trailing fragment without punctuation"},
		},
		{
			"empty",
			"   ",
			nil,
		},
		{
			"repeated terminators",
			"Wait... what? Really!",
			[]string{"Wait.", "what?", "Really!"},
		},
		{
			"trailing fragment",
			"Done. and then",
			[]string{"Done.", "and then"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitSentencesPartitionsText(t *testing.T) {
	text := "One fish. Two fish. Red fish. Blue fish."
	sentences := SplitSentences(text)
	joined := strings.Join(sentences, " ")
	if joined != text {
		t.Errorf("joined sentences = %q, want original %q", joined, text)
	}
}
