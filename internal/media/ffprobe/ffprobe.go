// Package ffprobe inspects media artifacts produced by the render and
// combine stages.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info summarizes one probed artifact.
type Info struct {
	DurationSeconds float64
	SizeBytes       int64
	FormatName      string
	HasVideo        bool
	HasAudio        bool
	Width           int
	Height          int
}

type probePayload struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// Inspect runs ffprobe against the path and summarizes the result.
func Inspect(ctx context.Context, binary string, path string) (Info, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Info{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return parse(output)
}

func parse(output []byte) (Info, error) {
	var payload probePayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return Info{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	info := Info{
		DurationSeconds: parseFloat(payload.Format.Duration),
		FormatName:      payload.Format.FormatName,
	}
	if size := parseFloat(payload.Format.Size); size > 0 {
		info.SizeBytes = int64(size)
	}
	for _, stream := range payload.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			info.HasVideo = true
			if stream.Width > 0 {
				info.Width = stream.Width
				info.Height = stream.Height
			}
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

func parseFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
