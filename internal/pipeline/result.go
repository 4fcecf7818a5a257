package pipeline

import (
	"time"

	"coursecast/internal/chunker"
	"coursecast/internal/services"
)

// Metadata summarizes a finished artifact.
type Metadata struct {
	TotalDurationSeconds  float64
	OutputDurationSeconds float64
	ChunkCount            int
	ChunksIncluded        int
	Elapsed               time.Duration
	OutputSizeBytes       int64
}

// GenerationResult is the single value a settled job hands back.
type GenerationResult struct {
	Success     bool
	VideoPath   string
	VideoURL    string
	PreviewPath string
	Chunks      []*chunker.Chunk
	Metadata    Metadata

	// Failure fields, populated when Success is false.
	ErrorMessage string
	ErrorCode    services.Code
	Recoverable  bool
	Cancelled    bool
}

func failureResult(perr *services.PipelineError, chunks []*chunker.Chunk, elapsed time.Duration) *GenerationResult {
	return &GenerationResult{
		Success:      false,
		Chunks:       chunks,
		Metadata:     Metadata{Elapsed: elapsed, ChunkCount: len(chunks)},
		ErrorMessage: perr.Message,
		ErrorCode:    perr.Code,
		Recoverable:  perr.Recoverable,
	}
}
