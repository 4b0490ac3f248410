// Package storage archives files on a local directory or an S3-compatible
// bucket (AWS S3, MinIO, R2, Spaces).
//
//	disk, err := storage.Open(ctx, storage.Config{Driver: "s3", S3: s3cfg})
//	err = disk.Put(ctx, "invoices/AB12CD34.pdf", pdf)
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, replacing any existing file.
	Put(ctx context.Context, path string, content []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error
	Driver() string
}
