// Package fsutil provides the file system helpers reqfile uses for output files
// and its own configuration.
package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for downloaded files
	FileModeSecure  = 0o600 // -rw-------: For config files that may carry credentials

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModeSecure  = 0o750 // drwxr-x---: For the config directory
)
