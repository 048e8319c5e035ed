// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/danielhkuo/properview/cliparse"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrExists      = errors.New("blob already exists")
	ErrInvalidKey  = errors.New("invalid blob key")
	ErrUnsupported = errors.New("blob: unsupported operation")
)

// Info describes a stored blob
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Store is the narrow S3-like surface the image handlers need.
// Put is create-only.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
	// PresignURL returns a time-limited GET URL, or ErrUnsupported when the
	// store can only be read through the API.
	PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Driver() string
}

// Open builds the store selected by cfg.BlobDriver
func Open(ctx context.Context, cfg cliparse.Config) (Store, error) {
	switch cfg.BlobDriver {
	case cliparse.BlobFS, "":
		return NewFSStore(cfg.BlobDir)
	case cliparse.BlobMemory:
		return NewMemoryStore(), nil
	case cliparse.BlobS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	}
	return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
}

// ValidateKey rejects empty, absolute, and traversing keys.
// Returns the cleaned key.
func ValidateKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return path.Clean(key), nil
}

// ImageKey is where a listing image lives
func ImageKey(listingID, imageID string) string {
	return "listings/" + listingID + "/" + imageID
}
