// Package store implements the pluggable materialization storage
// backend of SPEC_FULL.md §4.9: a local filesystem backend for plain
// paths and an S3 backend for "s3://"-prefixed matBaseDir values.
package store

import (
	"context"
	"strings"
)

// Backend is the narrow object-storage surface the materialization
// manager needs: write a materialized sub-plan's output bytes under a
// lineage-signature-derived key, and read them back on a cache hit.
type Backend interface {
	// Put writes data under key, returning the URI the catalogue should
	// record for later retrieval.
	Put(ctx context.Context, key string, data []byte) (uri string, err error)

	// Get reads back the bytes previously stored at uri.
	Get(ctx context.Context, uri string) ([]byte, error)
}

// ForBaseDir picks the S3 backend when baseDir has an "s3://" prefix,
// the local filesystem backend otherwise (SPEC_FULL.md §4.9).
func ForBaseDir(baseDir string) (Backend, error) {
	if strings.HasPrefix(baseDir, "s3://") {
		return NewS3Backend(baseDir)
	}
	return NewLocalBackend(baseDir), nil
}
