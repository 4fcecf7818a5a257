// Package config loads, normalizes, and validates coursecast configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY. The Config type centralizes every knob the pipeline and CLI
// need: output/work directories, chunking parameters, provider credentials,
// renderer binaries, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
