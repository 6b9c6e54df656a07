package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDisk writes files below a root directory
type LocalDisk struct {
	root    string
	baseURL string
}

// NewLocal creates a local disk rooted at root. Returned URLs are baseURL
// followed by the key; an empty baseURL yields root-relative paths such as
// "/uploads/image-1.png".
func NewLocal(root, baseURL string) (*LocalDisk, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage/local: resolve root: %w", err)
	}
	return &LocalDisk{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the absolute directory files are written to
func (d *LocalDisk) Root() string {
	return d.root
}

func (d *LocalDisk) abs(key string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(key))
	if full != d.root && !strings.HasPrefix(full, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("storage/local: key %q escapes the root", key)
	}
	return full, nil
}

func (d *LocalDisk) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	full, err := d.abs(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(key), "/"), nil
}
