package audio

import (
	"strings"

	"coursecast/internal/textutil"
)

// SplitForSynthesis partitions text into pieces no longer than limit bytes.
// Splits happen at sentence boundaries first; a sentence that alone exceeds
// the limit is re-split at word boundaries. Words longer than the limit are
// emitted as-is rather than cut mid-word.
func SplitForSynthesis(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var pieces []string
	var current string
	flush := func() {
		if current != "" {
			pieces = append(pieces, current)
			current = ""
		}
	}

	for _, sentence := range textutil.SplitSentences(text) {
		if len(sentence) > limit {
			flush()
			pieces = append(pieces, splitAtWords(sentence, limit)...)
			continue
		}
		if current == "" {
			current = sentence
		} else if len(current)+1+len(sentence) <= limit {
			current += " " + sentence
		} else {
			flush()
			current = sentence
		}
	}
	flush()
	return pieces
}

func splitAtWords(sentence string, limit int) []string {
	var pieces []string
	var current string
	for _, word := range textutil.SplitWords(sentence) {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= limit:
			current += " " + word
		default:
			pieces = append(pieces, current)
			current = word
		}
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}
