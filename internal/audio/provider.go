package audio

import "context"

// SynthesisOptions carries per-request voice parameters.
type SynthesisOptions struct {
	Language string
	Speed    float64
	Pitch    float64
}

// VoiceProvider converts text to raw audio bytes. Implementations call an
// external speech service; the stage handles splitting and fallback.
type VoiceProvider interface {
	Synthesize(ctx context.Context, text string, opts SynthesisOptions) ([]byte, error)
}
