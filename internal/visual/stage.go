package visual

import (
	"context"
	"log/slog"
	"strconv"

	"coursecast/internal/chunker"
	"coursecast/internal/config"
	"coursecast/internal/logging"
	"coursecast/internal/script"
	"coursecast/internal/services"
)

// Stage requests animation programs and attaches validated (or repaired)
// programs to chunks.
type Stage struct {
	provider  Provider
	minLength int
	style     string
	logger    *slog.Logger
}

// NewStage builds the visual stage around a provider.
func NewStage(provider Provider, cfg config.Visual, logger *slog.Logger) *Stage {
	minLength := cfg.MinProgramLength
	if minLength <= 0 {
		minLength = DefaultMinProgramLength
	}
	return &Stage{
		provider:  provider,
		minLength: minLength,
		style:     cfg.DefaultStyle,
		logger:    logging.NewComponentLogger(logger, "visual"),
	}
}

// Generate obtains an animation program for the chunk. A provider transport
// failure is returned for the caller's retry policy; a provider response in
// any shape, however malformed, is repaired locally and never fails. The
// scene is optional and only enriches the request.
func (s *Stage) Generate(ctx context.Context, chunk *chunker.Chunk, scene *script.Scene) error {
	req := Request{
		SceneText:       chunk.Text,
		Style:           s.style,
		DurationSeconds: chunk.Duration,
	}
	if scene != nil {
		req.VisualDescription = scene.VisualDescription
		req.AnimationType = scene.AnimationType
	}

	result, err := s.provider.GenerateProgram(ctx, req)
	if err != nil {
		return services.NewPipelineError(services.CodeVisualGenerationFailed,
			"animation program request failed", err).
			WithDetail("chunk_id", strconv.Itoa(chunk.ID))
	}

	program := Repair(result, chunk.Text, chunk.Duration, s.minLength)
	s.attach(chunk, program)
	if program.Fallback {
		s.logger.Warn("provider output unusable, using fallback template",
			logging.Int(logging.FieldChunkID, chunk.ID))
	} else {
		s.logger.Debug("animation program accepted",
			logging.Int(logging.FieldChunkID, chunk.ID),
			logging.String("entry_point", program.EntryPoint),
			logging.Int("program_bytes", len(program.Source)))
	}
	return nil
}

// ApplyFallback assigns the deterministic template to the chunk. Used by the
// orchestrator when provider retries exhaust.
func (s *Stage) ApplyFallback(chunk *chunker.Chunk) {
	s.attach(chunk, FallbackProgram(chunk.Text, chunk.Duration))
	s.logger.Warn("visual retries exhausted, chunk keeps fallback template",
		logging.Int(logging.FieldChunkID, chunk.ID))
}

func (s *Stage) attach(chunk *chunker.Chunk, program *Program) {
	chunk.ProgramEntryPoint = program.EntryPoint
	chunk.ProgramSource = program.Source
	chunk.ProgramIsFallback = program.Fallback
}
