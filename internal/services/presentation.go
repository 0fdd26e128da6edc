package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/database"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
	"slidegen-backend/internal/storage"
)

type DeckGenerator interface {
	Validate(req models.SlideContentRequest) (models.SlideContentRequest, error)
	Generate(ctx context.Context, req models.SlideContentRequest, dir string, progress ProgressFunc) (*DeckResult, error)
}

type PresentationStore interface {
	Create(ctx context.Context, p *models.Presentation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Presentation, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Complete(ctx context.Context, id, presentationID uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error
}

type jobQueue interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PresentationService turns requests into stored decks and keeps their history.
type PresentationService struct {
	cfg      *config.Config
	pipeline DeckGenerator
	store    storage.Store
	repo     PresentationStore
	jobs     JobStore
	queue    jobQueue
	log      *logger.Logger
}

func NewPresentationService(cfg *config.Config, pipeline DeckGenerator, store storage.Store, repo PresentationStore, jobs JobStore, queue jobQueue, log *logger.Logger) *PresentationService {
	return &PresentationService{
		cfg:      cfg,
		pipeline: pipeline,
		store:    store,
		repo:     repo,
		jobs:     jobs,
		queue:    queue,
		log:      log.With("service", "PresentationService"),
	}
}

// Generate builds a deck synchronously and returns where it can be downloaded.
func (s *PresentationService) Generate(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest) (*models.GeneratePPTResponse, error) {
	p, err := s.Build(ctx, userID, req, nil)
	if err != nil {
		return nil, err
	}
	return &models.GeneratePPTResponse{Filename: p.Filename, PublicURL: p.PublicURL}, nil
}

// Build runs the pipeline in a scratch directory, uploads the file and records it.
func (s *PresentationService) Build(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest, progress ProgressFunc) (*models.Presentation, error) {
	req, err := s.pipeline.Validate(req)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	dir, err := os.MkdirTemp(s.cfg.OutputDir, "deck-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	result, err := s.pipeline.Generate(ctx, req, dir, progress)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := path.Join(userID.String(), id.String(), result.Filename)
	if err := s.upload(ctx, key, result.Path); err != nil {
		return nil, err
	}

	p := &models.Presentation{
		ID:         id,
		UserID:     userID,
		Grade:      req.Grade,
		Subject:    req.Subject,
		Topic:      req.Topic,
		Language:   req.Language,
		SlideCount: result.SlideCount,
		Filename:   result.Filename,
		StorageKey: key,
		PublicURL:  s.store.PublicURL(key),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("Failed to remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to record presentation: %w", err)
	}

	s.log.Info("Presentation stored", "user_id", userID, "presentation_id", p.ID, "key", key)
	return p, nil
}

func (s *PresentationService) upload(ctx context.Context, key, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open generated file: %w", err)
	}
	defer f.Close()

	if err := s.store.Upload(ctx, key, f, storage.PPTXContentType); err != nil {
		return fmt.Errorf("failed to upload presentation: %w", err)
	}
	return nil
}

// Enqueue validates req, records a pending job and pushes it onto the generation queue.
func (s *PresentationService) Enqueue(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest) (*models.Job, error) {
	req, err := s.pipeline.Validate(req)
	if err != nil {
		return nil, err
	}

	configBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job config: %w", err)
	}

	job := &models.Job{
		UserID:     userID,
		Type:       models.JobTypeDeckGeneration,
		ConfigJSON: configBytes,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		s.log.Error("Failed to encode job", "job_id", job.ID, "error", err)
		_ = s.jobs.Fail(ctx, job.ID, "invalid job payload")
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	if err := s.queue.LPush(ctx, database.DeckQueue, string(jobBytes)).Err(); err != nil {
		s.log.Error("Failed to enqueue job", "job_id", job.ID, "error", err)
		_ = s.jobs.Fail(ctx, job.ID, "queue unavailable")
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	return job, nil
}

func (s *PresentationService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Job not found"}
		}
		return nil, err
	}
	if job.UserID != userID {
		return nil, &ForbiddenError{Message: "Access denied"}
	}
	return job, nil
}

// List returns the caller's decks newest first. limit is clamped to 1..100, default 20.
func (s *PresentationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*models.PresentationPage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(offset, 0)

	items, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Presentation{}
	}
	return &models.PresentationPage{Presentations: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *PresentationService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Presentation, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Presentation not found"}
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, &ForbiddenError{Message: "Access denied"}
	}
	return p, nil
}

// Delete removes the record and its stored file. A failed object delete is logged only.
func (s *PresentationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete presentation: %w", err)
	}
	if err := s.store.Delete(ctx, p.StorageKey); err != nil {
		s.log.Warn("Failed to delete stored file", "key", p.StorageKey, "error", err)
	}
	return nil
}
