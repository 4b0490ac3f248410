package storage

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Config selects and configures one disk.
type Config struct {
	// Driver is "local", "s3" or empty for no disk.
	Driver    string
	LocalRoot string
	S3        S3Config
}

// Open builds the disk named by cfg.Driver. An empty driver returns a nil
// Disk and no error.
func Open(ctx context.Context, cfg Config) (Disk, error) {
	switch strings.ToLower(cfg.Driver) {
	case "":
		return nil, nil
	case "local":
		root := cfg.LocalRoot
		if root == "" {
			root = "storage"
		}
		return NewLocal(root)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q (supported: local, s3)", cfg.Driver)
	}
}

func contentType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
