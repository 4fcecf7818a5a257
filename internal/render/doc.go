// Package render turns a chunk's animation program into a video clip through
// a tiered fallback chain: the Manim renderer, then a procedural ffmpeg text
// card, then a minimal placeholder container written directly. Exhausting a
// tier is never fatal to the chunk; the next tier takes over.
package render
