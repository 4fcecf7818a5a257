package textutil

import "strings"

// SplitSentences splits text into sentences at terminal punctuation (., !, ?).
// The terminator stays attached to its sentence. Whitespace-only fragments are
// discarded. Text without any terminal punctuation is returned as a single
// sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if sentence := strings.TrimSpace(current.String()); sentence != "" && !isBareTerminator(sentence) {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" && !isBareTerminator(tail) {
		sentences = append(sentences, tail)
	}
	return sentences
}

// SplitWords splits text on whitespace, discarding empty fields.
func SplitWords(text string) []string {
	return strings.Fields(text)
}

func isBareTerminator(s string) bool {
	return strings.Trim(s, ".!? ") == ""
}
