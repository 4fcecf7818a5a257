package storage

import (
	"context"
	"log/slog"

	"coursecast/internal/logging"
	"coursecast/internal/services"
)

// DegradingSink wraps another sink and swaps a failed upload for the local
// path. Storage is non-essential to producing a playable video, so upload
// failures are logged and classified but never surface to the job.
type DegradingSink struct {
	inner  Sink
	logger *slog.Logger
}

// NewDegradingSink wraps inner with local-path degradation.
func NewDegradingSink(inner Sink, logger *slog.Logger) *DegradingSink {
	return &DegradingSink{
		inner:  inner,
		logger: logging.NewComponentLogger(logger, "storage"),
	}
}

func (s *DegradingSink) Upload(ctx context.Context, localPath, destinationName string, ownerID int64, kind string) (string, error) {
	remote, err := s.inner.Upload(ctx, localPath, destinationName, ownerID, kind)
	if err != nil {
		perr := services.Classify(err)
		s.logger.Warn("upload failed, degrading to local path",
			logging.String("code", string(perr.Code)),
			logging.String("path", localPath),
			logging.Error(err))
		return localPath, nil
	}
	return remote, nil
}
