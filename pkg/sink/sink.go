//go:generate mockgen -destination=mocks/sink.go . Sink

// Package sink holds the persistence collaborators of a fetch: the local file
// system and S3-compatible object storage.
package sink

import (
	"context"
	"strings"
)

// Sink persists a fully buffered response body at dest.
type Sink interface {
	// Write stores body at dest, replacing anything already there. It returns only
	// after the whole body has been handed to the underlying store.
	Write(ctx context.Context, dest string, body []byte) error
}

// Router dispatches destinations with an s3:// scheme to Objects and everything
// else to Files.
type Router struct {
	Files   Sink
	Objects Sink
}

// NewRouter returns a Router writing plain paths to the local file system. objects
// may be nil, in which case s3:// destinations are rejected.
func NewRouter(objects Sink) *Router {
	return &Router{Files: File{}, Objects: objects}
}

// Write implements Sink.
func (r *Router) Write(ctx context.Context, dest string, body []byte) error {
	if IsObjectURL(dest) {
		if r.Objects == nil {
			return ErrNoObjectStoreFor(dest)
		}
		return r.Objects.Write(ctx, dest, body)
	}
	files := r.Files
	if files == nil {
		files = File{}
	}
	return files.Write(ctx, dest, body)
}

// IsObjectURL reports whether dest names an S3 object.
func IsObjectURL(dest string) bool {
	return strings.HasPrefix(dest, s3Scheme)
}
