package visual

import (
	"encoding/json"
	"regexp"
	"strings"
)

// The repair ladder turns untrusted provider output into a validated Program.
// Steps run in order of decreasing strictness; the first step that yields a
// valid program wins. Every step is total: it reports failure instead of
// panicking on arbitrary input.

var (
	entryPointPattern = regexp.MustCompile(`class\s+([A-Za-z_]\w*)\s*\(\s*[^)]*Scene[^)]*\)`)
	fencedPattern     = regexp.MustCompile("(?s)```(?:python|py)?\\s*\\n(.*?)```")
	codeLinePattern   = regexp.MustCompile(`^(\s+\S|from\s|import\s|class\s|def\s|#|@)`)
)

// parseStrict decodes the text as the provider's JSON schema.
func parseStrict(text string, minLength int) (*Program, bool) {
	var p Program
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return nil, false
	}
	if !p.Valid(minLength) {
		return nil, false
	}
	return &p, true
}

// extractFenced pulls the first fenced code block out of a markdown-wrapped
// response and derives the entry point from the code itself.
func extractFenced(text string, minLength int) (*Program, bool) {
	match := fencedPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	body := strings.TrimSpace(match[1])
	entry := findEntryPoint(body)
	p := &Program{EntryPoint: entry, Source: body}
	if !p.Valid(minLength) {
		return nil, false
	}
	return p, true
}

// extractSchema scans the raw text for a scene class definition and takes
// everything from the first import or class line onward as the program body.
func extractSchema(text string, minLength int) (*Program, bool) {
	entry := findEntryPoint(text)
	if entry == "" {
		return nil, false
	}
	start := -1
	for _, marker := range []string{"from manim", "import manim", "from ", "import ", "class "} {
		if idx := strings.Index(text, marker); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		return nil, false
	}
	body := strings.TrimSpace(text[start:])
	p := &Program{EntryPoint: entry, Source: body}
	if !p.Valid(minLength) {
		return nil, false
	}
	return p, true
}

// repairAggressive keeps only lines that plausibly belong to a program,
// discarding surrounding prose, then retries entry-point discovery. This is
// the last attempt before the deterministic fallback.
func repairAggressive(text string, minLength int) (*Program, bool) {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			kept = append(kept, "")
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(trimmed), "```") {
			continue
		}
		if codeLinePattern.MatchString(trimmed) || strings.ContainsAny(trimmed, "=(") {
			kept = append(kept, trimmed)
		}
	}
	body := strings.TrimSpace(strings.Join(kept, "\n"))
	entry := findEntryPoint(body)
	if entry == "" || body == "" {
		return nil, false
	}
	if !strings.Contains(body, "manim") {
		body = "from manim import *\n\n" + body
	}
	p := &Program{EntryPoint: entry, Source: body}
	if !p.Valid(minLength) {
		return nil, false
	}
	return p, true
}

func findEntryPoint(text string) string {
	match := entryPointPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

// Repair runs the full ladder over the provider result. It never fails: when
// every extraction step comes up empty the deterministic fallback template is
// returned, rendering the chunk text as a timed text card.
func Repair(result *ProviderResult, chunkText string, durationSeconds float64, minLength int) *Program {
	if result != nil {
		if direct := (&Program{EntryPoint: result.EntryPoint, Source: result.Program}); direct.Valid(minLength) {
			return direct
		}
		for _, step := range []func(string, int) (*Program, bool){
			parseStrict,
			extractFenced,
			extractSchema,
			repairAggressive,
		} {
			for _, text := range []string{result.Program, result.Raw} {
				if text == "" {
					continue
				}
				if p, ok := step(text, minLength); ok {
					return p
				}
			}
		}
	}
	return FallbackProgram(chunkText, durationSeconds)
}
