// Package logging builds the slog loggers used throughout coursecast and
// provides field constructors plus context helpers that carry job, stage, and
// chunk identifiers into every log line.
package logging
