// Package pipeline orchestrates a generation job end to end: chunking the
// script, running the visual, audio, and render stages per chunk with retry
// and degradation, combining the surviving clips, and publishing the final
// artifact. The caller observes progress through an optional callback and
// receives a GenerationResult once the job settles; no untyped error escapes.
package pipeline
