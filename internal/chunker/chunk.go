package chunker

import "strings"

// Chunk is one time-bounded slice of narration plus the artifacts generated
// for it. A chunk is owned by exactly one generation job; stages mutate it in
// place as they complete.
type Chunk struct {
	ID        int
	Text      string
	StartTime float64
	Duration  float64
	Sentences []string

	// Stage outputs. Paths are empty until the owning stage has run.
	ProgramEntryPoint  string
	ProgramSource      string
	ProgramIsFallback  bool
	AudioPath          string
	AudioIsPlaceholder bool
	VideoPath          string
	VideoIsPlaceholder bool
}

// HasVideo reports whether the chunk carries a usable video artifact
// reference. Only chunks with video are handed to the combiner.
func (c *Chunk) HasVideo() bool {
	return strings.TrimSpace(c.VideoPath) != ""
}

// HasAudio reports whether the chunk carries an audio artifact reference.
func (c *Chunk) HasAudio() bool {
	return strings.TrimSpace(c.AudioPath) != ""
}
