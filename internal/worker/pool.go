package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"slidegen-backend/internal/database"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
	"slidegen-backend/internal/services"
)

type DeckBuilder interface {
	Build(ctx context.Context, userID uuid.UUID, req models.SlideContentRequest, progress services.ProgressFunc) (*models.Presentation, error)
}

type UpdatePublisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// queueClient is the subset of *redis.Client the pool needs.
type queueClient interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Pool consumes deck-generation jobs. Each job gets exactly one attempt.
type Pool struct {
	redis       queueClient
	builder     DeckBuilder
	jobs        services.JobStore
	publisher   UpdatePublisher
	log         *logger.Logger
	workerCount int
	pollTimeout time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPool(redisClient queueClient, builder DeckBuilder, jobs services.JobStore, publisher UpdatePublisher, workerCount int, log *logger.Logger) *Pool {
	return &Pool{
		redis:       redisClient,
		builder:     builder,
		jobs:        jobs,
		publisher:   publisher,
		log:         log.With("component", "worker"),
		workerCount: max(1, workerCount),
		pollTimeout: 5 * time.Second,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.log.Info("Started worker goroutines", "count", p.workerCount, "queue", database.DeckQueue)
}

// Stop signals every worker and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.log.With("worker", id)

	for {
		select {
		case <-p.stopChan:
			log.Info("Worker shutting down")
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, p.pollTimeout, database.DeckQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warn("Queue read failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Error("Failed to parse job", "error", err)
			continue
		}

		lockKey := database.JobLockKey(job.ID)
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		p.process(ctx, &job, log)

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) process(ctx context.Context, job *models.Job, log *logger.Logger) {
	log = log.With("job_id", job.ID, "user_id", job.UserID)
	log.Info("Processing job", "type", job.Type)

	p.jobs.UpdateStatus(ctx, job.ID, models.JobProcessing)

	if job.Type != models.JobTypeDeckGeneration {
		p.handleFailure(ctx, job, fmt.Errorf("unknown job type: %s", job.Type), log)
		return
	}

	var req models.SlideContentRequest
	if err := json.Unmarshal(job.ConfigJSON, &req); err != nil {
		p.handleFailure(ctx, job, fmt.Errorf("invalid job config: %w", err), log)
		return
	}

	progress := func(step int, name string) {
		p.publisher.PublishUpdate(ctx, job.UserID, models.WSMessage{
			Type: "status_update",
			Payload: models.StatusUpdate{
				JobID:    job.ID,
				Step:     step,
				StepName: name,
			},
		})
	}

	presentation, err := p.builder.Build(ctx, job.UserID, req, progress)
	if err != nil {
		p.handleFailure(ctx, job, err, log)
		return
	}
	p.handleSuccess(ctx, job, presentation, log)
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, presentation *models.Presentation, log *logger.Logger) {
	if err := p.jobs.Complete(ctx, job.ID, presentation.ID); err != nil {
		log.Error("Failed to mark job completed", "error", err)
	}

	p.publisher.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID:          job.ID,
			PresentationID: presentation.ID,
			Filename:       presentation.Filename,
			PublicURL:      presentation.PublicURL,
		},
	})

	log.Info("Job completed", "presentation_id", presentation.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error, log *logger.Logger) {
	errMsg := err.Error()
	log.Error("Job failed", "error", errMsg)

	if dbErr := p.jobs.Fail(ctx, job.ID, errMsg); dbErr != nil {
		log.Error("Failed to mark job failed", "error", dbErr)
	}

	p.publisher.PublishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    errorCode(err),
			ErrorMessage: errMsg,
		},
	})
}

func errorCode(err error) string {
	var genErr *services.GenerationError
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &genErr):
		return "GENERATION_FAILED"
	case errors.As(err, &vErr):
		return "VALIDATION_ERROR"
	default:
		return "JOB_FAILED"
	}
}
