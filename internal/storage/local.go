package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"coursecast/internal/fileutil"
	"coursecast/internal/services"
	"coursecast/internal/textutil"
)

// LocalSink copies artifacts into a directory tree under the configured
// output root: <root>/<owner>/<kind>/<name>.
type LocalSink struct {
	root string
}

// NewLocalSink builds a sink rooted at dir.
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{root: dir}
}

func (s *LocalSink) Upload(_ context.Context, localPath, destinationName string, ownerID int64, kind string) (string, error) {
	if kind == "" {
		kind = "video"
	}
	dir := filepath.Join(s.root, fmt.Sprintf("%d", ownerID), textutil.SanitizeToken(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "storage", "local", "create destination directory", err)
	}

	dest := filepath.Join(dir, textutil.SanitizeFileName(destinationName))
	if err := fileutil.CopyFileVerified(localPath, dest); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "storage", "local", "copy artifact", err)
	}
	return dest, nil
}
