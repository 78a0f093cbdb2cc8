package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/reqfile/pkg/errors"
)

// HookFileExtension is the extension of hook script files.
const HookFileExtension = ".tengo"

// LoadFile reads a single script file and registers it for hookType.
func LoadFile(executor *TengoExecutor, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "error reading hook file %s: %v", path, err)
	}
	executor.AddScript(hookType, string(content))
	return nil
}

// LoadDir registers every <hook-type>.tengo file found in dir. Unknown names are
// skipped; a missing directory is not an error.
func LoadDir(executor *TengoExecutor, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(errors.ErrHookLoad, "failed to read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		switch hookType {
		case PostFetch, OnFailure:
		default:
			continue
		}

		if err := LoadFile(executor, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
