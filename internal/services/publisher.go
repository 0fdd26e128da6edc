package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"slidegen-backend/internal/database"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Publisher struct {
	redis redisPublisher
	log   *logger.Logger
}

func NewPublisher(redisClient redisPublisher, log *logger.Logger) *Publisher {
	return &Publisher{redis: redisClient, log: log}
}

// PublishUpdate is best effort; a lost update never fails the job.
func (p *Publisher) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("Failed to encode update", "type", msg.Type, "error", err)
		return
	}
	if err := p.redis.Publish(ctx, database.UpdatesChannel(userID), string(data)).Err(); err != nil {
		p.log.Warn("Failed to publish update", "user_id", userID, "type", msg.Type, "error", err)
	}
}
