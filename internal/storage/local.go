package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"slidegen-backend/internal/pkg/logger"
)

// LocalFilesPrefix is the route the HTTP server mounts LocalStore.Root under.
const LocalFilesPrefix = "/files/"

type LocalStore struct {
	root    string
	baseURL string
	log     *logger.Logger
}

func NewLocalStore(root, baseURL string, log *logger.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", root, err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With("service", "LocalStore"),
	}, nil
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create object %q: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write object %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close object %q: %w", key, err)
	}

	s.log.Debug("Stored object", "key", key, "content_type", contentType)
	return ctx.Err()
}

func (s *LocalStore) PublicURL(key string) string {
	return s.baseURL + LocalFilesPrefix + strings.TrimLeft(key, "/")
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// path maps key below root and rejects keys that escape it.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(strings.TrimSpace(key)))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
