package config

const (
	defaultOutputDir = "~/.local/share/coursecast/videos"
	defaultWorkDir   = "~/.local/share/coursecast/work"
	defaultLogDir    = "~/.local/share/coursecast/logs"

	defaultChunkDurationSeconds = 5

	defaultMinProgramLength = 50
	defaultVisualStyle      = "educational"

	defaultAudioLanguage        = "en"
	defaultAudioSpeed           = 1.0
	defaultProviderCharLimit    = 200
	defaultRequestDelayMillis   = 200
	defaultAudioTimeoutSeconds  = 30
	defaultPlaceholderToneHz    = 440
	defaultSecondsPerCharacter  = 0.1
	defaultRenderWidth          = 1920
	defaultRenderHeight         = 1080
	defaultFrameRate            = 30
	defaultRenderQuality        = "medium"
	defaultManimBinary          = "manim"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultRenderTimeoutSeconds = 300
	defaultOverlayMaxChars      = 200

	defaultLLMModel          = "gemini-2.0-flash"
	defaultLLMTimeoutSeconds = 60

	defaultStorageBackend = "local"

	defaultNotifyRequestTimeout = 10

	defaultMaxRetries        = 2
	defaultRetryBaseSeconds  = 1
	defaultHeartbeatInterval = 15

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Chunking: Chunking{
			ChunkDurationSeconds: defaultChunkDurationSeconds,
		},
		Visual: Visual{
			MinProgramLength: defaultMinProgramLength,
			DefaultStyle:     defaultVisualStyle,
		},
		Audio: Audio{
			Language:            defaultAudioLanguage,
			Speed:               defaultAudioSpeed,
			Pitch:               0,
			ProviderCharLimit:   defaultProviderCharLimit,
			RequestDelayMillis:  defaultRequestDelayMillis,
			RequestTimeoutSecs:  defaultAudioTimeoutSeconds,
			PlaceholderToneHz:   defaultPlaceholderToneHz,
			SecondsPerCharacter: defaultSecondsPerCharacter,
		},
		Render: Render{
			Width:          defaultRenderWidth,
			Height:         defaultRenderHeight,
			FrameRate:      defaultFrameRate,
			Quality:        defaultRenderQuality,
			ManimBinary:    defaultManimBinary,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultRenderTimeoutSeconds,
			OverlayMaxRune: defaultOverlayMaxChars,
		},
		LLM: LLM{
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Storage: Storage{
			Backend: defaultStorageBackend,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Workflow: Workflow{
			MaxRetries:        defaultMaxRetries,
			RetryBaseSeconds:  defaultRetryBaseSeconds,
			HeartbeatInterval: defaultHeartbeatInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
