package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend stores materializations as objects under Bucket/Prefix,
// where matBaseDir was given as "s3://bucket/optional/prefix"
// (SPEC_FULL.md §4.9).
type S3Backend struct {
	Bucket string
	Prefix string
	client *s3.Client
}

func NewS3Backend(baseDir string) (*S3Backend, error) {
	rest := strings.TrimPrefix(baseDir, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	bucket := parts[0]
	prefix := ""
	if len(parts) == 2 {
		prefix = parts[1]
	}
	if bucket == "" {
		return nil, fmt.Errorf("store: s3 base dir %q has no bucket", baseDir)
	}

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("store: load aws config: %w", err)
	}
	return &S3Backend{
		Bucket: bucket,
		Prefix: prefix,
		client: s3.NewFromConfig(cfg),
	}, nil
}

func (b *S3Backend) key(key string) string {
	if b.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(b.Prefix, "/") + "/" + key
}

func (b *S3Backend) Put(ctx context.Context, key string, data []byte) (string, error) {
	fullKey := b.key(key)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("store: s3 put s3://%s/%s: %w", b.Bucket, fullKey, err)
	}
	return fmt.Sprintf("s3://%s/%s", b.Bucket, fullKey), nil
}

func (b *S3Backend) Get(ctx context.Context, uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("store: malformed s3 uri %q", uri)
	}
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(parts[0]),
		Key:    aws.String(parts[1]),
	})
	if err != nil {
		return nil, fmt.Errorf("store: s3 get %s: %w", uri, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("store: read s3 object body %s: %w", uri, err)
	}
	return data, nil
}
