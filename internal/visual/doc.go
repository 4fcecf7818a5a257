// Package visual obtains an animation program for each chunk from a
// code-generation provider and repairs the provider's output when it does not
// arrive in the expected shape. Repair never fails: it terminates in either a
// validated program or a deterministic text-card fallback.
package visual
