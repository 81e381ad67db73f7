package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tienda/internal/domain"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store keeps uploaded product images in one flat directory. Returned paths
// are relative to that directory.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store never overwrites an existing file: names are random and the file is
// created with O_EXCL.
func (s *Store) Store(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported image extension %q", domain.ErrValidation, ext)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload dir: %v", domain.ErrStorage, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", domain.ErrStorage, name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("%w: close %s: %v", domain.ErrStorage, name, err)
	}

	return name, nil
}

func (s *Store) Open(relativePath string) (io.ReadCloser, error) {
	clean, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, relativePath)
		}
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, relativePath, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrStorage, relativePath, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, relativePath)
	}
	return f, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (s *Store) Remove(relativePath string) error {
	clean, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", domain.ErrStorage, relativePath, err)
	}
	return nil
}

func (s *Store) resolve(relativePath string) (string, error) {
	if relativePath == "" || !filepath.IsLocal(relativePath) || filepath.Base(relativePath) != relativePath {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, relativePath)
	}
	return filepath.Join(s.dir, relativePath), nil
}
