// internal/domain/upload/service.go
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/config"
)

// Store keeps uploaded files on the local disk and serves them under a
// public URL prefix. A public id is "<folder>/<name>" without extension.
type Store struct {
	root       string
	publicURL  string
	maxSize    int64
	extensions []string
	logger     *logrus.Logger
}

// NewStore creates a new local file store
func NewStore(storage config.StorageConfig, limits config.UploadConfig, logger *logrus.Logger) *Store {
	extensions := make([]string, 0, len(limits.AllowedExtensions))
	for _, ext := range limits.AllowedExtensions {
		extensions = append(extensions, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	return &Store{
		root:       storage.LocalPath,
		publicURL:  strings.TrimRight(storage.PublicURL, "/"),
		maxSize:    limits.MaxSize,
		extensions: extensions,
		logger:     logger,
	}
}

// Upload writes r under folder. An empty publicID gets a generated name; an
// existing file with the same public id is replaced.
func (s *Store) Upload(ctx context.Context, r io.Reader, filename, folder, publicID string) (*Result, error) {
	if r == nil || filename == "" {
		return nil, ErrEmptyFile
	}

	ext := Extension(filename)
	if !slices.Contains(s.extensions, ext) {
		return nil, ErrExtensionBlocked
	}

	name := publicID
	if name == "" {
		name = uuid.NewString()
	}
	id := path.Join(clean(folder), clean(name))
	if !validID(id) {
		return nil, ErrInvalidPublicID
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, filepath.FromSlash(path.Dir(id)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Replacing keeps one file per public id
	s.removeMatching(id)

	rel := id + "." + ext
	fullPath := filepath.Join(s.root, filepath.FromSlash(rel))
	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if written == 0 {
		os.Remove(fullPath)
		return nil, ErrEmptyFile
	}
	if written > s.maxSize {
		os.Remove(fullPath)
		return nil, ErrFileTooLarge
	}

	s.logger.WithFields(logrus.Fields{
		"public_id": id,
		"size":      FormatSize(written),
	}).Debug("file stored")

	return &Result{
		URL:      s.publicURL + "/" + rel,
		PublicID: id,
		Size:     written,
	}, nil
}

// Destroy removes the file stored under publicID. Missing files are ignored.
func (s *Store) Destroy(ctx context.Context, publicID string) error {
	id := strings.Trim(path.Clean("/"+publicID), "/")
	if !validID(id) {
		return ErrInvalidPublicID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.removeMatching(id)
}

// MaxSize returns the largest accepted file in bytes
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

func (s *Store) removeMatching(id string) error {
	matches, err := filepath.Glob(filepath.Join(s.root, filepath.FromSlash(id)) + ".*")
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}
	return nil
}

func clean(segment string) string {
	return strings.Trim(path.Clean("/"+strings.TrimSpace(segment)), "/")
}

func validID(id string) bool {
	return id != "" && id != "." && !strings.Contains(id, "..") && !strings.ContainsAny(id, `*?[\`)
}
