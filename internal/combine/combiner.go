package combine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"coursecast/internal/chunker"
	"coursecast/internal/fileutil"
	"coursecast/internal/logging"
	"coursecast/internal/render"
	"coursecast/internal/services"
)

// Combiner runs the two-phase merge: per-chunk audio/video mux, then
// concatenation of all surviving clips into the final artifact.
type Combiner struct {
	ffmpegBinary string
	regen        render.Tier
	logger       *slog.Logger

	muxFn    func(ctx context.Context, ffmpegBinary, videoPath, audioPath, outPath string) error
	concatFn func(ctx context.Context, ffmpegBinary string, paths []string, outPath string) error
}

// New builds a combiner. regen, when non-nil, is used to regenerate
// placeholder clips once before excluding them.
func New(ffmpegBinary string, regen render.Tier, logger *slog.Logger) *Combiner {
	return &Combiner{
		ffmpegBinary: ffmpegBinary,
		regen:        regen,
		logger:       logging.NewComponentLogger(logger, "combine"),
		muxFn:        Mux,
		concatFn:     Concat,
	}
}

// Combine merges chunk artifacts into outputPath and returns the ids of the
// chunks included, in order. A chunk without a usable clip is excluded, never
// fatal; only zero usable clips fails the job.
func (c *Combiner) Combine(ctx context.Context, chunks []*chunker.Chunk, workDir, outputPath string) ([]int, error) {
	ordered := append([]*chunker.Chunk(nil), chunks...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var includedIDs []int
	var paths []string
	for _, chunk := range ordered {
		path, ok := c.prepareChunk(ctx, chunk, workDir)
		if !ok {
			continue
		}
		includedIDs = append(includedIDs, chunk.ID)
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, services.NewPipelineError(services.CodeVideoRenderingFailed,
			"no valid chunk video artifacts to combine", nil)
	}

	if len(paths) == 1 {
		// Single survivor: concatenation is skipped, not an error.
		if err := fileutil.CopyFile(paths[0], outputPath); err != nil {
			return nil, services.NewPipelineError(services.CodeVideoRenderingFailed,
				"copy single chunk video to output", err)
		}
		c.logger.Info("single artifact copied to output",
			logging.Int(logging.FieldChunkID, includedIDs[0]))
		return includedIDs, nil
	}

	if err := c.concatFn(ctx, c.ffmpegBinary, paths, outputPath); err != nil {
		c.logger.Warn("concat failed, copying first valid artifact", logging.Error(err))
		if copyErr := fileutil.CopyFile(paths[0], outputPath); copyErr != nil {
			return nil, services.NewPipelineError(services.CodeVideoRenderingFailed,
				"concat and first-artifact copy both failed", copyErr)
		}
		return includedIDs[:1], nil
	}

	if fileutil.FileSize(outputPath) == 0 {
		return nil, services.NewPipelineError(services.CodeVideoRenderingFailed,
			"concatenation produced an empty output", nil).WithDetail("path", outputPath)
	}

	c.logger.Info("chunks combined",
		logging.Int("included", len(includedIDs)),
		logging.Int("requested", len(chunks)))
	return includedIDs, nil
}

// prepareChunk resolves the clip that represents one chunk in the final
// concatenation: regenerating placeholders, muxing audio when present, and
// validating the file. Returns false when the chunk must be excluded.
func (c *Combiner) prepareChunk(ctx context.Context, chunk *chunker.Chunk, workDir string) (string, bool) {
	if !chunk.HasVideo() {
		c.logger.Warn("chunk has no video artifact, excluding",
			logging.Int(logging.FieldChunkID, chunk.ID))
		return "", false
	}

	path := chunk.VideoPath
	if chunk.VideoIsPlaceholder {
		regenerated, ok := c.regeneratePlaceholder(ctx, chunk, workDir)
		if !ok {
			c.logger.Warn("placeholder clip could not be regenerated, excluding",
				logging.Int(logging.FieldChunkID, chunk.ID))
			return "", false
		}
		path = regenerated
	}

	if fileutil.FileSize(path) == 0 {
		c.logger.Warn("chunk clip is empty or inaccessible, excluding",
			logging.Int(logging.FieldChunkID, chunk.ID),
			logging.String("path", path))
		return "", false
	}

	if chunk.HasAudio() {
		muxedPath := filepath.Join(workDir, fmt.Sprintf("chunk_%d_muxed_%d.mp4", chunk.ID, time.Now().UnixNano()))
		if err := c.muxFn(ctx, c.ffmpegBinary, path, chunk.AudioPath, muxedPath); err != nil {
			// Mux failure carries the video forward unmodified.
			c.logger.Warn("mux failed, carrying video without audio",
				logging.Int(logging.FieldChunkID, chunk.ID),
				logging.Error(err))
		} else if fileutil.FileSize(muxedPath) > 0 {
			path = muxedPath
		}
	}

	return path, true
}

// regeneratePlaceholder tries the procedural renderer exactly once for a
// chunk whose clip is a minimal placeholder container.
func (c *Combiner) regeneratePlaceholder(ctx context.Context, chunk *chunker.Chunk, workDir string) (string, bool) {
	if c.regen == nil || !c.regen.Available() {
		return "", false
	}
	job := render.Job{
		ChunkID:         chunk.ID,
		Text:            chunk.Text,
		DurationSeconds: chunk.Duration,
		WorkDir:         workDir,
	}
	path, err := c.regen.Render(ctx, job)
	if err != nil || fileutil.FileSize(path) == 0 {
		return "", false
	}
	c.logger.Info("placeholder clip regenerated procedurally",
		logging.Int(logging.FieldChunkID, chunk.ID))
	return path, true
}
