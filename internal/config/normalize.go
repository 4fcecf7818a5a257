package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeAudio()
	c.normalizeRender()
	c.normalizeStorage()
	c.normalizeLogging()
	c.normalizeWorkflow()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return err
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Language = strings.TrimSpace(c.Audio.Language)
	if c.Audio.Language == "" {
		c.Audio.Language = defaultAudioLanguage
	}
	if c.Audio.Speed <= 0 {
		c.Audio.Speed = defaultAudioSpeed
	}
	if c.Audio.ProviderCharLimit <= 0 {
		c.Audio.ProviderCharLimit = defaultProviderCharLimit
	}
	if c.Audio.RequestDelayMillis < 0 {
		c.Audio.RequestDelayMillis = defaultRequestDelayMillis
	}
	if c.Audio.RequestTimeoutSecs <= 0 {
		c.Audio.RequestTimeoutSecs = defaultAudioTimeoutSeconds
	}
	if c.Audio.PlaceholderToneHz <= 0 {
		c.Audio.PlaceholderToneHz = defaultPlaceholderToneHz
	}
	if c.Audio.SecondsPerCharacter <= 0 {
		c.Audio.SecondsPerCharacter = defaultSecondsPerCharacter
	}
}

func (c *Config) normalizeRender() {
	if c.Render.Width <= 0 {
		c.Render.Width = defaultRenderWidth
	}
	if c.Render.Height <= 0 {
		c.Render.Height = defaultRenderHeight
	}
	if c.Render.FrameRate <= 0 {
		c.Render.FrameRate = defaultFrameRate
	}
	c.Render.Quality = strings.ToLower(strings.TrimSpace(c.Render.Quality))
	if c.Render.Quality == "" {
		c.Render.Quality = defaultRenderQuality
	}
	if strings.TrimSpace(c.Render.ManimBinary) == "" {
		c.Render.ManimBinary = defaultManimBinary
	}
	if strings.TrimSpace(c.Render.FFmpegBinary) == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Render.FFprobeBinary) == "" {
		c.Render.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Render.TimeoutSeconds <= 0 {
		c.Render.TimeoutSeconds = defaultRenderTimeoutSeconds
	}
	if c.Render.OverlayMaxRune <= 0 {
		c.Render.OverlayMaxRune = defaultOverlayMaxChars
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxRetries < 0 {
		c.Workflow.MaxRetries = defaultMaxRetries
	}
	if c.Workflow.RetryBaseSeconds <= 0 {
		c.Workflow.RetryBaseSeconds = defaultRetryBaseSeconds
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Chunking.ChunkDurationSeconds <= 0 {
		c.Chunking.ChunkDurationSeconds = defaultChunkDurationSeconds
	}
	if c.Visual.MinProgramLength <= 0 {
		c.Visual.MinProgramLength = defaultMinProgramLength
	}
	if strings.TrimSpace(c.Visual.DefaultStyle) == "" {
		c.Visual.DefaultStyle = defaultVisualStyle
	}
}
