package sink

import (
	"fmt"

	"github.com/glorpus-work/reqfile/pkg/errors"
)

// ErrInvalidObjectURL is returned for an s3:// destination without bucket or key.
func ErrInvalidObjectURL(dest string) error {
	return fmt.Errorf("%w: %q is not of the form s3://bucket/key", errors.ErrInvalidDestination, dest)
}

// ErrNoObjectStoreFor is returned when an s3:// destination is used without an S3 sink.
func ErrNoObjectStoreFor(dest string) error {
	return fmt.Errorf("%w for %s", errors.ErrNoObjectStore, dest)
}
