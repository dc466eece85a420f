// Package images stores catalog images on disk and derives their BlurHash
// placeholders and ETags.
package images

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shoefit/shoefit-server/internal/util"
)

// Storage manages image files keyed by slug.
// Each slug has at most one file, named {slug}{ext} for its format.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// Image is a stored image with its serving metadata.
type Image struct {
	Data    []byte
	Format  Format
	ETag    string
	ModTime time.Time
}

// NewStorage creates a Storage rooted at dir, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("image directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &Storage{basePath: dir}, nil
}

// Save writes data under slug in format f, replacing any previous image for
// the slug regardless of its format.
func (s *Storage) Save(slug string, data []byte, f Format) error {
	if err := validateSlug(slug); err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(slug, f)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write image file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace image file: %w", err)
	}

	for _, other := range formats {
		if other.Ext == f.Ext {
			continue
		}
		if err := os.Remove(s.Path(slug, other)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove stale image: %w", err)
		}
	}

	return nil
}

// Load reads the image stored under slug.
// Returns ErrNotFound if there is none.
func (s *Storage) Load(slug string) (*Image, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, f, ok := s.find(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("read image file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image file: %w", err)
	}

	return &Image{
		Data:    data,
		Format:  f,
		ETag:    ETag(data),
		ModTime: info.ModTime(),
	}, nil
}

// Exists checks if an image is stored under slug.
func (s *Storage) Exists(slug string) bool {
	if validateSlug(slug) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, _, ok := s.find(slug)
	return ok
}

// Delete removes the image stored under slug. Deleting a missing image is
// not an error.
func (s *Storage) Delete(slug string) error {
	if err := validateSlug(slug); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range formats {
		if err := os.Remove(s.Path(slug, f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete image file: %w", err)
		}
	}
	return nil
}

// Path returns the filesystem path for slug in format f.
func (s *Storage) Path(slug string, f Format) string {
	return filepath.Join(s.basePath, slug+f.Ext)
}

// find locates the file for slug. Caller must hold the lock.
func (s *Storage) find(slug string) (string, Format, bool) {
	for _, f := range formats {
		path := s.Path(slug, f)
		if _, err := os.Stat(path); err == nil {
			return path, f, true
		}
	}
	return "", Format{}, false
}

// ETag returns the quoted hex SHA-256 of data, ready for an ETag header.
func ETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// validateSlug rejects anything that is not already a slug, which keeps
// path separators and dot segments out of file names.
func validateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug cannot be empty")
	}
	if util.Slugify(slug) != slug {
		return fmt.Errorf("invalid image slug %q", slug)
	}
	return nil
}

