// Package fsutil holds the small filesystem helpers shared by the Markov
// model persister and the materialization cache catalogue: both need
// create-or-truncate, temp-and-rename atomic writes (spec.md §4.5, §6).
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data to path by first writing to a sibling temp
// file and renaming it into place, so a reader never observes a partial
// write and a crash mid-write never corrupts the previous contents.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("fsutil: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("fsutil: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("fsutil: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fsutil: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fsutil: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fsutil: rename temp: %w", err)
	}
	return nil
}

// Exists reports whether path is present, treating any stat error other
// than "not exist" as "not present" for the caller's cache-hygiene
// purposes (spec.md §6 filesystem service contract).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
