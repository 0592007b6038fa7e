package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dianpeng/piglet/fsutil"
)

// LocalBackend stores materializations as plain files under BaseDir,
// written atomically via fsutil (spec.md §4.5).
type LocalBackend struct {
	BaseDir string
}

func NewLocalBackend(baseDir string) *LocalBackend {
	return &LocalBackend{BaseDir: baseDir}
}

func (b *LocalBackend) Put(_ context.Context, key string, data []byte) (string, error) {
	path := filepath.Join(b.BaseDir, key)
	if err := fsutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("store: local put %s: %w", path, err)
	}
	return "file://" + path, nil
}

func (b *LocalBackend) Get(_ context.Context, uri string) ([]byte, error) {
	path := uri
	if len(uri) >= len("file://") && uri[:len("file://")] == "file://" {
		path = uri[len("file://"):]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: local get %s: %w", path, err)
	}
	return data, nil
}
