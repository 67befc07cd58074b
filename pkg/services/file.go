package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const tempFilePrefix = ".hugo-directus-"

// SafeJoin joins name onto dir, refusing names that would escape it.
// It returns "" for such names.
func SafeJoin(dir, name string) string {
	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || filepath.Base(clean) != clean {
		return ""
	}
	return filepath.Join(dir, clean)
}

// ensureDir creates dir and its parents. Existing directories are fine.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// writeFileAtomic replaces filename with data via a temp file and rename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return writeStreamAtomic(filename, bytes.NewReader(data), perm)
}

// writeStreamAtomic copies r into filename. The target only appears once the
// whole stream was written and synced.
func writeStreamAtomic(filename string, r io.Reader, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
