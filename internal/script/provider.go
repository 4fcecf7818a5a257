package script

import "context"

// Request captures the inputs for script generation.
type Request struct {
	Topic           string
	Audience        string
	DurationSeconds float64
	DocumentContext string
}

// Provider produces a narration script for a topic. Implementations call an
// external language model; the pipeline itself only consumes the result.
type Provider interface {
	GenerateScript(ctx context.Context, req Request) (*VideoScript, error)
}
