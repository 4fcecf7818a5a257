package render

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"coursecast/internal/services"
	"coursecast/internal/textutil"
)

// DefaultOverlayMaxChars bounds the text burned into procedural clips.
const DefaultOverlayMaxChars = 120

const cardBackground = "0x1a1a2e"

// FFmpegTier synthesizes a solid-color clip with the chunk text burned in.
// It is the procedural fallback when the Manim renderer is unavailable or
// keeps failing for a chunk.
type FFmpegTier struct {
	binary     string
	opts       Options
	overlayMax int
	timeout    time.Duration
}

// NewFFmpegTier builds the procedural renderer tier.
func NewFFmpegTier(binary string, opts Options, overlayMaxChars int, timeout time.Duration) *FFmpegTier {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if overlayMaxChars <= 0 {
		overlayMaxChars = DefaultOverlayMaxChars
	}
	return &FFmpegTier{binary: binary, opts: opts, overlayMax: overlayMaxChars, timeout: timeout}
}

func (t *FFmpegTier) Name() string { return "ffmpeg" }

func (t *FFmpegTier) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

func (t *FFmpegTier) Render(ctx context.Context, job Job) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	duration := job.DurationSeconds
	if duration <= 0 {
		duration = 5
	}
	outPath := filepath.Join(job.WorkDir, fmt.Sprintf("chunk_%d_card_%d.mp4", job.ChunkID, time.Now().UnixNano()))

	overlay := textutil.TruncateWords(strings.TrimSpace(job.Text), t.overlayMax)
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=%s:s=%dx%d:d=%.2f:r=%d", cardBackground, t.opts.Width, t.opts.Height, duration, t.opts.FrameRate),
		"-vf", drawTextFilter(overlay),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		outPath,
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "ffmpeg",
			fmt.Sprintf("procedural render failed: %s", tailOf(string(output))), err)
	}
	return outPath, nil
}

func drawTextFilter(text string) string {
	if text == "" {
		text = "..."
	}
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=34:x=(w-text_w)/2:y=(h-text_h)/2",
		escapeDrawText(text))
}

// escapeDrawText protects the characters ffmpeg's filter parser treats
// specially. Escaping happens at the argument level only; no shell string is
// ever assembled.
func escapeDrawText(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}
