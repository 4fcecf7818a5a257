package visual

import "strings"

// DefaultMinProgramLength is the smallest program body accepted as genuine
// provider output. Anything shorter is assumed to be truncated or junk.
const DefaultMinProgramLength = 50

// Program is an animation program plus its declared entry point. The source
// is an opaque text artifact as far as the pipeline is concerned; only the
// renderer interprets it.
type Program struct {
	EntryPoint string `json:"entry_point"`
	Source     string `json:"program"`

	// Fallback marks programs produced by the deterministic template rather
	// than the provider. The renderer may use this to skip the primary tier.
	Fallback bool `json:"-"`
}

// Valid reports whether the program satisfies the acceptance contract: a
// non-empty entry point, a non-empty body, and a body at least minLength
// bytes long.
func (p *Program) Valid(minLength int) bool {
	if p == nil {
		return false
	}
	if minLength <= 0 {
		minLength = DefaultMinProgramLength
	}
	if strings.TrimSpace(p.EntryPoint) == "" {
		return false
	}
	body := strings.TrimSpace(p.Source)
	return body != "" && len(body) >= minLength
}
