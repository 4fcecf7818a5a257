package storage

import "context"

// Sink publishes a finished artifact and returns the URL (or path) callers
// should hand out.
type Sink interface {
	Upload(ctx context.Context, localPath, destinationName string, ownerID int64, kind string) (string, error)
}
