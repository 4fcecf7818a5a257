package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"coursecast/internal/chunker"
	"coursecast/internal/config"
	"coursecast/internal/logging"
	"coursecast/internal/services"
)

// Stage produces one audio artifact per chunk.
type Stage struct {
	provider VoiceProvider
	cfg      config.Audio
	logger   *slog.Logger
}

// NewStage builds the audio stage around a voice provider.
func NewStage(provider VoiceProvider, cfg config.Audio, logger *slog.Logger) *Stage {
	if cfg.ProviderCharLimit <= 0 {
		cfg.ProviderCharLimit = 200
	}
	return &Stage{
		provider: provider,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "audio"),
	}
}

// Generate synthesizes speech for the chunk text and writes it under workDir,
// recording the path on the chunk. Text over the provider limit is split and
// the responses appended byte-wise. Partial sub-chunk failures are tolerated;
// only a total failure surfaces, so the caller's retry policy can run.
func (s *Stage) Generate(ctx context.Context, chunk *chunker.Chunk, workDir string) error {
	opts := SynthesisOptions{
		Language: s.cfg.Language,
		Speed:    s.cfg.Speed,
		Pitch:    s.cfg.Pitch,
	}

	pieces := SplitForSynthesis(chunk.Text, s.cfg.ProviderCharLimit)
	if len(pieces) == 0 {
		pieces = []string{chunk.Text}
	}

	var combined []byte
	var lastErr error
	succeeded := 0
	for i, piece := range pieces {
		if i > 0 && s.cfg.RequestDelayMillis > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(s.cfg.RequestDelayMillis) * time.Millisecond):
			}
		}
		data, err := s.provider.Synthesize(ctx, piece, opts)
		if err != nil {
			lastErr = err
			s.logger.Warn("sub-chunk synthesis failed",
				logging.Int(logging.FieldChunkID, chunk.ID),
				logging.Int("piece", i+1),
				logging.Int("pieces", len(pieces)),
				logging.Error(err))
			continue
		}
		combined = append(combined, data...)
		succeeded++
	}

	if succeeded == 0 {
		return services.NewPipelineError(services.CodeAudioGenerationFailed,
			"speech synthesis failed for every sub-chunk", lastErr).
			WithDetail("chunk_id", strconv.Itoa(chunk.ID)).
			WithDetail("pieces", strconv.Itoa(len(pieces)))
	}

	path := s.artifactPath(workDir, chunk.ID, "mp3")
	if err := os.WriteFile(path, combined, 0o644); err != nil {
		return services.NewPipelineError(services.CodeAudioGenerationFailed,
			"write audio artifact", err).WithDetail("path", path)
	}

	chunk.AudioPath = path
	chunk.AudioIsPlaceholder = false
	s.logger.Debug("audio synthesized",
		logging.Int(logging.FieldChunkID, chunk.ID),
		logging.Int("pieces_ok", succeeded),
		logging.Int("pieces", len(pieces)),
		logging.Int("bytes", len(combined)))
	return nil
}

// ApplyPlaceholder writes a locally generated tone sized to the estimated
// speech duration. Used when provider retries exhaust; it never depends on
// external services.
func (s *Stage) ApplyPlaceholder(chunk *chunker.Chunk, workDir string) error {
	seconds := EstimateSpeechSeconds(chunk.Text, s.cfg.SecondsPerCharacter)
	data := PlaceholderTone(seconds, s.cfg.PlaceholderToneHz)

	path := s.artifactPath(workDir, chunk.ID, "wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.NewPipelineError(services.CodeAudioGenerationFailed,
			"write placeholder audio", err).WithDetail("path", path)
	}

	chunk.AudioPath = path
	chunk.AudioIsPlaceholder = true
	s.logger.Warn("audio retries exhausted, chunk keeps placeholder tone",
		logging.Int(logging.FieldChunkID, chunk.ID),
		logging.Float64("seconds", seconds))
	return nil
}

func (s *Stage) artifactPath(workDir string, chunkID int, ext string) string {
	name := fmt.Sprintf("chunk_%d_audio_%d.%s", chunkID, time.Now().UnixNano(), ext)
	return filepath.Join(workDir, name)
}
