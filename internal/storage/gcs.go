package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/pkg/logger"
)

type GCSStore struct {
	client        *gcs.Client
	bucket        string
	publicBaseURL string
	log           *logger.Logger
}

func NewGCSStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*GCSStore, error) {
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client:        client,
		bucket:        cfg.StorageBucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.StoragePublicBaseURL), "/"),
		log:           log.With("service", "GCSStore", "bucket", cfg.StorageBucket),
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload %q to bucket %q: %w", key, s.bucket, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %q in bucket %q: %w", key, s.bucket, err)
	}

	s.log.Info("Uploaded object", "key", key)
	return nil
}

func (s *GCSStore) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, s.bucket, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
