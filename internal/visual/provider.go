package visual

import "context"

// Request describes the animation wanted for one chunk.
type Request struct {
	SceneText         string
	VisualDescription string
	AnimationType     string
	Style             string
	DurationSeconds   float64
}

// ProviderResult is the raw outcome of one provider call. EntryPoint and
// Program are populated when the provider's response decoded cleanly; Raw
// always carries the full response text so the repair ladder can work on it.
type ProviderResult struct {
	EntryPoint string
	Program    string
	Raw        string
}

// Provider generates animation programs. Implementations wrap an external
// language model whose output format cannot be trusted; callers must validate
// and repair the result.
type Provider interface {
	GenerateProgram(ctx context.Context, req Request) (*ProviderResult, error)
}
