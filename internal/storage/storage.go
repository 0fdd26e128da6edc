// Package storage keeps generated decks somewhere a browser can download them.
package storage

import (
	"context"
	"fmt"
	"io"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/pkg/logger"
)

const PPTXContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Store uploads objects by key and exposes them under a public URL.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by STORAGE_TYPE.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch cfg.StorageType {
	case "local":
		return NewLocalStore(cfg.StoragePath, cfg.StoragePublicBaseURL, log)
	case "gcs":
		return NewGCSStore(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}
