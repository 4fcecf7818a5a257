package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"coursecast/internal/config"
	"coursecast/internal/jobs"
	"coursecast/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}

	out, _, err = runCLI(t, []string{"config", "path"}, "")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("config path printed nothing")
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate", "--config", env.configPath}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration is valid")
}

func TestJobsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	store, err := jobs.Open(env.cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	id, err := store.Create(ctx, &jobs.Job{Topic: "photosynthesis"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := store.MarkFailed(ctx, id, "AUDIO_GENERATION_FAILED", "tts unreachable", true); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	// Release the store lock before the CLI opens its own handle.
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out, _, err := runCLI(t, []string{"jobs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "photosynthesis")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"jobs", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs show: %v", err)
	}
	requireContains(t, out, "AUDIO_GENERATION_FAILED")

	out, _, err = runCLI(t, []string{"jobs", "retry", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs retry: %v", err)
	}
	requireContains(t, out, "reset to pending")

	out, _, err = runCLI(t, []string{"jobs", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs clear: %v", err)
	}
	requireContains(t, out, "Removed 0 finished job(s)")
}

func TestJobsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"jobs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs list: %v", err)
	}
	requireContains(t, out, "No jobs recorded")
}

func TestDepsCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, []string{"deps"}, configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "manim")
	requireContains(t, out, "ffmpeg")
	requireContains(t, out, "ffprobe")
}
