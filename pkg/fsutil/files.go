package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFile creates or truncates the file at path and writes data to it in one
// sequential write. The handle is closed on every path; a close error is reported
// only when the write itself succeeded. Nothing is renamed, so an interrupted write
// can leave a partial file behind.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n, err := f.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return nil
}

// ReplaceFile writes the output of write into a temporary file next to path and
// renames it over path once write and close have succeeded. The parent directory is
// created with dirPerm when missing.
func ReplaceFile(path string, perm, dirPerm os.FileMode, write func(io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
