package render

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"coursecast/internal/services"
)

// ManimTier invokes the Manim renderer as a subprocess. The program is
// written to a temp file, rendered into a per-invocation media directory, and
// the produced clip is located by name afterwards because Manim nests its
// output under quality-dependent subdirectories.
type ManimTier struct {
	binary  string
	opts    Options
	timeout time.Duration
}

// NewManimTier builds the primary renderer tier.
func NewManimTier(binary string, opts Options, timeout time.Duration) *ManimTier {
	if strings.TrimSpace(binary) == "" {
		binary = "manim"
	}
	return &ManimTier{binary: binary, opts: opts, timeout: timeout}
}

func (t *ManimTier) Name() string { return "manim" }

func (t *ManimTier) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

func (t *ManimTier) Render(ctx context.Context, job Job) (string, error) {
	if strings.TrimSpace(job.ProgramSource) == "" || strings.TrimSpace(job.EntryPoint) == "" {
		return "", services.Wrap(services.ErrValidation, "render", "manim", "chunk carries no animation program", nil)
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	stamp := time.Now().UnixNano()
	programPath := filepath.Join(job.WorkDir, fmt.Sprintf("chunk_%d_scene_%d.py", job.ChunkID, stamp))
	if err := os.WriteFile(programPath, []byte(job.ProgramSource), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "manim", "write program file", err)
	}

	mediaDir := filepath.Join(job.WorkDir, fmt.Sprintf("chunk_%d_media_%d", job.ChunkID, stamp))
	outputName := fmt.Sprintf("chunk_%d.mp4", job.ChunkID)

	args := []string{
		"render",
		qualityFlag(t.opts.Quality),
		"--fps", fmt.Sprintf("%d", t.opts.FrameRate),
		"-r", fmt.Sprintf("%d,%d", t.opts.Width, t.opts.Height),
		"--media_dir", mediaDir,
		"-o", outputName,
		programPath,
		job.EntryPoint,
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "manim",
			fmt.Sprintf("manim render failed: %s", tailOf(string(output))), err)
	}

	clip, err := locateOutput(mediaDir, outputName)
	if err != nil {
		return "", err
	}
	return clip, nil
}

func qualityFlag(quality string) string {
	switch strings.ToLower(quality) {
	case "low":
		return "-ql"
	case "high":
		return "-qh"
	default:
		return "-qm"
	}
}

// locateOutput walks the media directory for the named clip. Manim buries the
// file under videos/<module>/<resolution>/, which varies with the quality
// flag, so a walk is simpler than reconstructing the layout.
func locateOutput(mediaDir, name string) (string, error) {
	var found string
	err := filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "manim", "scan media directory", err)
	}
	if found == "" {
		return "", services.Wrap(services.ErrExternalTool, "render", "manim",
			fmt.Sprintf("manim reported success but %s was not produced", name), nil)
	}
	return found, nil
}

func tailOf(output string) string {
	output = strings.TrimSpace(output)
	const max = 400
	if len(output) <= max {
		return output
	}
	return "..." + output[len(output)-max:]
}
