package textutil

import "strings"

// TruncateWords shortens text to at most max runes without cutting a word in
// half. When truncation happens an ellipsis is appended; the result including
// the ellipsis never exceeds max runes. A max too small to fit even the first
// word falls back to a hard cut on a rune boundary.
func TruncateWords(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	const ellipsis = "..."
	budget := max - len(ellipsis)
	if budget <= 0 {
		return string(runes[:max])
	}

	head := string(runes[:budget+1])
	cut := strings.LastIndex(head, " ")
	if cut <= 0 {
		return string(runes[:budget]) + ellipsis
	}
	return strings.TrimSpace(head[:cut]) + ellipsis
}
