// Package script defines the narration script model consumed by the
// generation pipeline and the provider abstraction used to obtain scripts
// from an external language model.
package script
