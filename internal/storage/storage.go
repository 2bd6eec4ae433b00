// Package storage persists uploaded auction images.  The handler decides
// the stored filename; implementations only move bytes.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store saves an uploaded image under the given filename and returns the
// name to record on the auction.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// allowed upload extensions, matching the marketplace's image policy
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// AllowedExtension reports whether the filename carries an accepted image
// extension.  The comparison is case-insensitive.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// LocalStore writes images to a directory on local disk.  This is the
// default backend.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	// filename is server-generated; reject anything that escapes the dir.
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	dst := filepath.Join(s.Dir, filename)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		return "", fmt.Errorf("write %s: %w", dst, copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", dst, closeErr)
	}
	return filename, nil
}
