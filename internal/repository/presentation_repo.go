package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"slidegen-backend/internal/models"
)

type PresentationRepo struct {
	pool *pgxpool.Pool
}

func NewPresentationRepo(pool *pgxpool.Pool) *PresentationRepo {
	return &PresentationRepo{pool: pool}
}

const presentationColumns = `id, user_id, grade, subject, topic, language, slide_count, filename, storage_key, public_url, created_at`

func (r *PresentationRepo) Create(ctx context.Context, p *models.Presentation) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `INSERT INTO presentations (id, user_id, grade, subject, topic, language, slide_count, filename, storage_key, public_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.Grade, p.Subject, p.Topic, p.Language,
		p.SlideCount, p.Filename, p.StorageKey, p.PublicURL,
	).Scan(&p.CreatedAt)
}

func (r *PresentationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error) {
	p := &models.Presentation{}
	err := r.pool.QueryRow(ctx, "SELECT "+presentationColumns+" FROM presentations WHERE id = $1", id).Scan(
		&p.ID, &p.UserID, &p.Grade, &p.Subject, &p.Topic, &p.Language,
		&p.SlideCount, &p.Filename, &p.StorageKey, &p.PublicURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByUser returns one page of the user's decks, newest first, and the total count.
func (r *PresentationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Presentation, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM presentations WHERE user_id = $1", userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+presentationColumns+" FROM presentations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*models.Presentation
	for rows.Next() {
		p := &models.Presentation{}
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Grade, &p.Subject, &p.Topic, &p.Language,
			&p.SlideCount, &p.Filename, &p.StorageKey, &p.PublicURL, &p.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *PresentationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM presentations WHERE id = $1", id)
	return err
}
