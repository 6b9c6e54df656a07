// Package storage persists uploaded files on a local directory or an
// S3-compatible bucket and reports their public location.
package storage

import (
	"context"
	"fmt"
	"io"

	"storefront/internal/config"
)

// Disk is the storage driver used for uploads
type Disk interface {
	// Put writes the content under key and returns its public URL or path
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// New returns the disk selected by STORAGE_DISK
func New(ctx context.Context, cfg config.StorageConfig) (Disk, error) {
	switch cfg.Disk {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.URL)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", cfg.Disk)
	}
}
