// Package textutil provides text processing utilities shared by the
// generation pipeline.
//
// The primary use cases are:
//   - Splitting narration text into sentences at terminal punctuation
//   - Word-boundary-aware truncation for overlay rendering
//   - Sanitizing titles and path segments for safe filesystem use
package textutil
