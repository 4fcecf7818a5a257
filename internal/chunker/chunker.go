package chunker

import (
	"log/slog"
	"strings"

	"coursecast/internal/logging"
	"coursecast/internal/textutil"
)

// Chunker derives the chunk plan for a narration.
type Chunker struct {
	chunkDuration float64
	logger        *slog.Logger
}

// New creates a chunker. chunkDurationSeconds below one second is clamped to
// one to keep the chunk count finite.
func New(chunkDurationSeconds float64, logger *slog.Logger) *Chunker {
	if chunkDurationSeconds < 1 {
		chunkDurationSeconds = 1
	}
	return &Chunker{
		chunkDuration: chunkDurationSeconds,
		logger:        logging.NewComponentLogger(logger, "chunker"),
	}
}

// ChunkDuration returns the configured per-chunk duration in seconds.
func (c *Chunker) ChunkDuration() float64 { return c.chunkDuration }

// Split partitions the narration into chunks. Sentences are distributed as
// evenly as possible across floor(totalDuration/chunkDuration) slots with the
// final slot absorbing the remainder, so no sentence is ever dropped. Slots
// that end up with no text are omitted and the surviving chunks are
// renumbered contiguously from one.
//
// Duration is a scheduling hint, not derived from text length: every emitted
// chunk gets exactly the configured chunk duration.
func (c *Chunker) Split(narration string, totalDurationSeconds float64) []*Chunk {
	sentences := textutil.SplitSentences(narration)
	if len(sentences) == 0 {
		c.logger.Warn("narration is empty, emitting no chunks")
		return nil
	}

	slots := int(totalDurationSeconds / c.chunkDuration)
	if slots < 1 {
		slots = 1
	}
	perSlot := len(sentences) / slots

	chunks := make([]*Chunk, 0, slots)
	for i := 0; i < slots; i++ {
		start := i * perSlot
		end := start + perSlot
		if i == slots-1 {
			end = len(sentences)
		}
		if start >= end {
			continue
		}
		part := sentences[start:end]
		text := strings.TrimSpace(strings.Join(part, " "))
		if text == "" {
			continue
		}
		id := len(chunks) + 1
		chunks = append(chunks, &Chunk{
			ID:        id,
			Text:      text,
			StartTime: float64(id-1) * c.chunkDuration,
			Duration:  c.chunkDuration,
			Sentences: append([]string(nil), part...),
		})
	}

	c.logger.Debug("narration split",
		logging.Int("sentences", len(sentences)),
		logging.Int("slots", slots),
		logging.Int("chunks", len(chunks)))
	return chunks
}
