// Package deps checks the external tools the render and combine stages shell
// out to. Missing optional tools only narrow the renderer chain; missing
// required tools are surfaced before a job starts.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"coursecast/internal/config"
)

// Requirement defines an external dependency coursecast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements derives the dependency list from the configured binaries. The
// renderer chain degrades through ffmpeg down to a built-in placeholder, so
// every subprocess tool is optional; the pipeline still runs without them.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "manim",
			Command:     cfg.Render.ManimBinary,
			Description: "primary animation renderer",
			Optional:    true,
		},
		{
			Name:        "ffmpeg",
			Command:     cfg.Render.FFmpegBinary,
			Description: "procedural renderer, mux, and concat",
			Optional:    true,
		},
		{
			Name:        "ffprobe",
			Command:     cfg.Render.FFprobeBinary,
			Description: "artifact duration and stream inspection",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
