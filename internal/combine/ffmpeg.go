package combine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"coursecast/internal/services"
)

// Mux merges an audio track into a clip. The video stream is copied, the
// audio transcoded to AAC, and the result truncated to the shorter stream.
func Mux(ctx context.Context, ffmpegBinary, videoPath, audioPath, outPath string) error {
	binary := binaryOrDefault(ffmpegBinary)
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "combine", "mux",
			fmt.Sprintf("mux failed: %s", tailOf(string(output))), err)
	}
	return nil
}

// Concat stream-copies the clips, in order, into one output file using the
// concat demuxer. No re-encoding happens.
func Concat(ctx context.Context, ffmpegBinary string, paths []string, outPath string) error {
	if len(paths) == 0 {
		return services.Wrap(services.ErrValidation, "combine", "concat", "no inputs to concatenate", nil)
	}

	listPath := filepath.Join(filepath.Dir(outPath), fmt.Sprintf("concat_%d.txt", time.Now().UnixNano()))
	var b strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(path))
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "combine", "concat", "write concat list", err)
	}
	defer os.Remove(listPath)

	binary := binaryOrDefault(ffmpegBinary)
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outPath,
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "combine", "concat",
			fmt.Sprintf("concat failed: %s", tailOf(string(output))), err)
	}
	return nil
}

// escapeConcatPath escapes single quotes for the concat demuxer's quoted
// string syntax.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

func binaryOrDefault(binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "ffmpeg"
	}
	return binary
}

func tailOf(output string) string {
	output = strings.TrimSpace(output)
	const max = 400
	if len(output) <= max {
		return output
	}
	return "..." + output[len(output)-max:]
}
