// Package combine merges per-chunk audio into clips and concatenates the
// clips into the final artifact. It tolerates missing or invalid chunks; the
// output is always an order-preserving subsequence of the requested chunks.
package combine
