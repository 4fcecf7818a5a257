// Package storage uploads final artifacts. Upload failures degrade to the
// local path so a finished video is never lost to a storage outage.
package storage
