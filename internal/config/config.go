package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// Chunking contains narration chunking parameters.
type Chunking struct {
	ChunkDurationSeconds int `toml:"chunk_duration_seconds"`
}

// Visual contains animation program generation settings.
type Visual struct {
	MinProgramLength int    `toml:"min_program_length"`
	DefaultStyle     string `toml:"default_style"`
}

// Audio contains speech synthesis settings.
type Audio struct {
	Language            string  `toml:"language"`
	Speed               float64 `toml:"speed"`
	Pitch               float64 `toml:"pitch"`
	ProviderCharLimit   int     `toml:"provider_char_limit"`
	RequestDelayMillis  int     `toml:"request_delay_millis"`
	Endpoint            string  `toml:"endpoint"`
	RequestTimeoutSecs  int     `toml:"request_timeout_seconds"`
	PlaceholderToneHz   int     `toml:"placeholder_tone_hz"`
	SecondsPerCharacter float64 `toml:"seconds_per_character"`
}

// Render contains video rendering settings for the tiered renderer chain.
type Render struct {
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	FrameRate      int    `toml:"frame_rate"`
	Quality        string `toml:"quality"`
	ManimBinary    string `toml:"manim_binary"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	OverlayMaxRune int    `toml:"overlay_max_chars"`
}

// LLM contains connection settings for the Gemini generation collaborators.
type LLM struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Storage contains final artifact upload settings.
type Storage struct {
	Backend string `toml:"backend"`
	Bucket  string `toml:"bucket"`
	Region  string `toml:"region"`
	Prefix  string `toml:"prefix"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Workflow contains retry and pacing settings for the orchestrator.
type Workflow struct {
	MaxRetries        int `toml:"max_retries"`
	RetryBaseSeconds  int `toml:"retry_base_seconds"`
	HeartbeatInterval int `toml:"heartbeat_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for coursecast.
//
// Configuration sections by subsystem:
//   - Paths: output, scratch, and log directories
//   - Chunking: narration segmentation parameters
//   - Visual: animation program validation thresholds
//   - Audio: voice synthesis language/speed/pitch and provider limits
//   - Render: renderer binaries, resolution, frame rate
//   - LLM: Gemini connection settings for script and program generation
//   - Storage: final artifact upload backend
//   - Notifications: ntfy push notification settings
//   - Workflow: retry policy knobs
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Chunking      Chunking      `toml:"chunking"`
	Visual        Visual        `toml:"visual"`
	Audio         Audio         `toml:"audio"`
	Render        Render        `toml:"render"`
	LLM           LLM           `toml:"llm"`
	Storage       Storage       `toml:"storage"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/coursecast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("coursecast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
