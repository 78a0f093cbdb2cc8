package sink

import (
	"context"

	"github.com/glorpus-work/reqfile/pkg/fsutil"
)

// File writes bodies to the local file system, creating or truncating the target.
type File struct{}

// Write implements Sink. The context is only checked before the file is opened;
// a write that has started runs to completion.
func (File) Write(ctx context.Context, dest string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fsutil.WriteFile(dest, body, fsutil.FileModeDefault)
}
