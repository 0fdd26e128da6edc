package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"slidegen-backend/internal/models"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = models.JobPending

	configBytes := []byte(j.ConfigJSON)
	if len(configBytes) == 0 {
		configBytes = []byte("{}")
	}

	query := `INSERT INTO jobs (id, user_id, type, config_json, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		j.ID, j.UserID, j.Type, configBytes, j.Status,
	).Scan(&j.CreatedAt)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j := &models.Job{}
	query := `SELECT id, user_id, type, config_json, status, error_message, presentation_id, created_at, completed_at
		FROM jobs WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&j.ID, &j.UserID, &j.Type, &j.ConfigJSON, &j.Status,
		&j.ErrorMessage, &j.PresentationID, &j.CreatedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := "UPDATE jobs SET status = $1 WHERE id = $2"
	if status == models.JobCompleted || status == models.JobFailed {
		now := time.Now()
		query = "UPDATE jobs SET status = $1, completed_at = $2 WHERE id = $3"
		_, err := r.pool.Exec(ctx, query, status, now, id)
		return err
	}
	_, err := r.pool.Exec(ctx, query, status, id)
	return err
}

func (r *JobRepo) Complete(ctx context.Context, id, presentationID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE jobs SET status = $1, presentation_id = $2, completed_at = $3 WHERE id = $4",
		models.JobCompleted, presentationID, time.Now(), id,
	)
	return err
}

func (r *JobRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE jobs SET status = $1, error_message = $2, completed_at = $3 WHERE id = $4",
		models.JobFailed, errMsg, time.Now(), id,
	)
	return err
}
