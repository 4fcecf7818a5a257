package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coursecast/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, path, exists, err := config.Load(filepath.Join(dir, "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("exists should be false for a missing file")
	}
	if path == "" {
		t.Error("resolved path should not be empty")
	}
	if cfg.Chunking.ChunkDurationSeconds != 5 {
		t.Errorf("chunk duration = %d, want default 5", cfg.Chunking.ChunkDurationSeconds)
	}
	if cfg.Audio.ProviderCharLimit != 200 {
		t.Errorf("provider char limit = %d, want default 200", cfg.Audio.ProviderCharLimit)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"
work_dir = "` + filepath.Join(dir, "work") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[chunking]
chunk_duration_seconds = 10

[render]
quality = "HIGH"

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists should be true")
	}
	if cfg.Chunking.ChunkDurationSeconds != 10 {
		t.Errorf("chunk duration = %d, want 10", cfg.Chunking.ChunkDurationSeconds)
	}
	if cfg.Render.Quality != "high" {
		t.Errorf("quality = %q, want normalized \"high\"", cfg.Render.Quality)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("format = %q, want normalized \"json\"", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad quality", func(c *config.Config) { c.Render.Quality = "ultra" }, "render.quality"},
		{"bad backend", func(c *config.Config) { c.Storage.Backend = "ftp" }, "storage.backend"},
		{"s3 without bucket", func(c *config.Config) { c.Storage.Backend = "s3" }, "storage.bucket"},
		{"bad speed", func(c *config.Config) { c.Audio.Speed = 9 }, "audio.speed"},
		{"tiny char limit", func(c *config.Config) { c.Audio.ProviderCharLimit = 5 }, "provider_char_limit"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := config.ExpandPath("~/videos")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "videos") {
		t.Errorf("ExpandPath = %q, want %q", got, filepath.Join(home, "videos"))
	}
}
