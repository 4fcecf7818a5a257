package render

import (
	"context"

	"coursecast/internal/config"
)

// Job carries everything a tier needs to produce one clip.
type Job struct {
	ChunkID         int
	Text            string
	ProgramSource   string
	EntryPoint      string
	DurationSeconds float64
	WorkDir         string
}

// Options holds the target output parameters shared by all tiers.
type Options struct {
	Width     int
	Height    int
	FrameRate int
	Quality   string
}

// OptionsFromConfig derives render options with defaults filled in.
func OptionsFromConfig(cfg config.Render) Options {
	opts := Options{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FrameRate,
		Quality:   cfg.Quality,
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.Quality == "" {
		opts.Quality = "medium"
	}
	return opts
}

// Tier is one rung of the renderer fallback chain.
type Tier interface {
	// Name identifies the tier in logs.
	Name() string
	// Available reports whether the tier's external tooling is reachable.
	// Unavailable tiers are skipped without counting as failures.
	Available() bool
	// Render produces a clip and returns its path.
	Render(ctx context.Context, job Job) (string, error)
}
