// Package audio synthesizes a voice track for each chunk. Text longer than
// the provider's safety limit is split at sentence boundaries and the
// resulting buffers are appended byte-wise. When the provider is unreachable
// a locally generated placeholder tone stands in so downstream stages always
// receive a valid audio artifact.
package audio
