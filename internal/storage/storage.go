// Package storage archives the documents submitted to each run in an
// S3-compatible object store. Objects are streamed; nothing touches local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions describe an upload. Size is the exact byte count, or -1
// when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for the run archive.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// RunKey is the archive key of one document of a run: runs/<run id>/<kind><ext>.
// The submitted filename is kept in object metadata, not in the key.
func RunKey(runID, kind, ext string) string {
	return path.Join("runs", runID, kind+ext)
}
