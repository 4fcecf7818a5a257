// Package chunker splits a narration script into fixed-duration chunks at
// sentence boundaries. Chunks are the unit of work for the generation
// pipeline; every downstream stage attaches its artifact to the chunk it was
// produced for.
package chunker
