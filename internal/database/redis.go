package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Key layout shared by the API, the workers and the websocket hub.
const (
	// DeckQueue is the list background deck jobs are pushed to and popped from.
	DeckQueue = "queue:deck-generation"

	updatesPrefix = "deck_updates:"
	refreshPrefix = "refresh:"
	jobLockPrefix = "job_lock:"
)

// UpdatesChannel names the pub/sub channel carrying one user's job progress.
func UpdatesChannel(userID uuid.UUID) string {
	return updatesPrefix + userID.String()
}

// RefreshTokenKey maps an opaque refresh token to its owner's user ID.
func RefreshTokenKey(token string) string {
	return refreshPrefix + token
}

// JobLockKey guards a job against being built by two workers.
func JobLockKey(jobID uuid.UUID) string {
	return jobLockPrefix + jobID.String()
}

// RedisClients keeps BLPOP consumers off the connection that carries
// progress subscriptions, so a busy queue never delays websocket updates.
type RedisClients struct {
	// Queue serves the deck job list, job locks and refresh tokens.
	Queue *redis.Client
	// PubSub serves deck_updates publishing and subscriptions.
	PubSub *redis.Client
}

func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	queueOpt := *opt
	queueOpt.ClientName = "slidegen-queue"
	queue, err := dialRedis(ctx, &queueOpt, "queue")
	if err != nil {
		return nil, err
	}

	pubsubOpt := *opt
	pubsubOpt.ClientName = "slidegen-pubsub"
	pubsub, err := dialRedis(ctx, &pubsubOpt, "pubsub")
	if err != nil {
		queue.Close()
		return nil, err
	}

	return &RedisClients{Queue: queue, PubSub: pubsub}, nil
}

func dialRedis(ctx context.Context, opt *redis.Options, role string) (*redis.Client, error) {
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis (%s): %w", role, err)
	}
	return client, nil
}

func (r *RedisClients) Close() {
	r.Queue.Close()
	r.PubSub.Close()
}
