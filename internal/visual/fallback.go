package visual

import (
	"fmt"
	"strings"

	"coursecast/internal/textutil"
)

// FallbackEntryPoint is the scene class declared by the deterministic
// template.
const FallbackEntryPoint = "VideoScene"

const fallbackLineWidth = 46

// FallbackProgram builds the deterministic text-card animation for a chunk.
// It renders the literal chunk text, wrapped to readable lines, held for the
// chunk duration. The output is always a valid program regardless of input.
func FallbackProgram(chunkText string, durationSeconds float64) *Program {
	if durationSeconds <= 0 {
		durationSeconds = 5
	}
	lines := wrapLines(chunkText, fallbackLineWidth)
	if len(lines) == 0 {
		lines = []string{"..."}
	}
	if len(lines) > 6 {
		lines = lines[:6]
	}

	var b strings.Builder
	b.WriteString("from manim import *\n\n\n")
	fmt.Fprintf(&b, "class %s(Scene):\n", FallbackEntryPoint)
	b.WriteString("    def construct(self):\n")
	b.WriteString("        lines = VGroup(\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "            Text(%s, font_size=30),\n", pythonString(line))
	}
	b.WriteString("        )\n")
	b.WriteString("        lines.arrange(DOWN, buff=0.4)\n")
	b.WriteString("        self.play(FadeIn(lines), run_time=1)\n")
	fmt.Fprintf(&b, "        self.wait(%.2f)\n", holdSeconds(durationSeconds))

	return &Program{
		EntryPoint: FallbackEntryPoint,
		Source:     b.String(),
		Fallback:   true,
	}
}

func holdSeconds(duration float64) float64 {
	hold := duration - 1
	if hold < 0.5 {
		hold = 0.5
	}
	return hold
}

func wrapLines(text string, width int) []string {
	words := textutil.SplitWords(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	lines = append(lines, current)
	return lines
}

// pythonString renders a Go string as a double-quoted Python literal.
func pythonString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
