package render

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"coursecast/internal/chunker"
	"coursecast/internal/config"
	"coursecast/internal/fileutil"
	"coursecast/internal/logging"
	"coursecast/internal/services"
)

// Stage renders each chunk's animation program through the tier chain.
type Stage struct {
	tiers  []Tier
	logger *slog.Logger
}

// NewStage assembles the default chain: Manim, then the ffmpeg text card,
// then the minimal placeholder.
func NewStage(cfg config.Render, logger *slog.Logger) *Stage {
	opts := OptionsFromConfig(cfg)
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return NewStageWithTiers(logger,
		NewManimTier(cfg.ManimBinary, opts, timeout),
		NewFFmpegTier(cfg.FFmpegBinary, opts, cfg.OverlayMaxRune, timeout),
		NewPlaceholderTier(),
	)
}

// NewStageWithTiers builds a stage over an explicit chain. Used by tests and
// by the combiner's regeneration path.
func NewStageWithTiers(logger *slog.Logger, tiers ...Tier) *Stage {
	return &Stage{
		tiers:  tiers,
		logger: logging.NewComponentLogger(logger, "render"),
	}
}

// Render walks the tier chain until one produces a non-empty clip and
// attaches it to the chunk. Unavailable tiers are skipped silently; failing
// tiers are logged and the chain continues. Only exhausting every tier is
// reported, and that error remains recoverable for the caller's retry policy.
func (s *Stage) Render(ctx context.Context, chunk *chunker.Chunk, workDir string) error {
	job := Job{
		ChunkID:         chunk.ID,
		Text:            chunk.Text,
		ProgramSource:   chunk.ProgramSource,
		EntryPoint:      chunk.ProgramEntryPoint,
		DurationSeconds: chunk.Duration,
		WorkDir:         workDir,
	}

	var lastErr error
	for _, tier := range s.tiers {
		if !tier.Available() {
			s.logger.Debug("render tier unavailable, skipping",
				logging.Int(logging.FieldChunkID, chunk.ID),
				logging.String("tier", tier.Name()))
			continue
		}

		path, err := tier.Render(ctx, job)
		if err != nil {
			lastErr = err
			s.logger.Warn("render tier failed",
				logging.Int(logging.FieldChunkID, chunk.ID),
				logging.String("tier", tier.Name()),
				logging.Error(err))
			continue
		}
		if fileutil.FileSize(path) == 0 {
			lastErr = services.Wrap(services.ErrExternalTool, "render", tier.Name(), "tier produced an empty file", nil)
			s.logger.Warn("render tier produced empty output",
				logging.Int(logging.FieldChunkID, chunk.ID),
				logging.String("tier", tier.Name()))
			continue
		}

		chunk.VideoPath = path
		chunk.VideoIsPlaceholder = tier.Name() == "placeholder"
		s.logger.Info("chunk rendered",
			logging.Int(logging.FieldChunkID, chunk.ID),
			logging.String("tier", tier.Name()),
			logging.Int64("bytes", fileutil.FileSize(path)))
		return nil
	}

	return services.NewPipelineError(services.CodeVideoRenderingFailed,
		"every render tier failed or was unavailable", lastErr).
		WithDetail("chunk_id", strconv.Itoa(chunk.ID))
}
