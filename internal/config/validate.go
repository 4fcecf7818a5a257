package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validateChunking() error {
	if c.Chunking.ChunkDurationSeconds <= 0 {
		return errors.New("chunking.chunk_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.Speed <= 0 || c.Audio.Speed > 4 {
		return errors.New("audio.speed must be in (0, 4]")
	}
	if c.Audio.Pitch < -20 || c.Audio.Pitch > 20 {
		return errors.New("audio.pitch must be in [-20, 20]")
	}
	if c.Audio.ProviderCharLimit < 20 {
		return errors.New("audio.provider_char_limit must be at least 20")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return errors.New("render.width and render.height must be positive")
	}
	if c.Render.FrameRate <= 0 || c.Render.FrameRate > 120 {
		return errors.New("render.frame_rate must be in [1, 120]")
	}
	switch c.Render.Quality {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("render.quality must be low, medium, or high (got %q)", c.Render.Quality)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "local":
		return nil
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket must be set when storage.backend is s3")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend must be local or s3 (got %q)", c.Storage.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	return nil
}
