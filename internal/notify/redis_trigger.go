package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// refreshChannel is the pub/sub channel carrying refresh nonces. Messages
// hold only a nonce; subscribers refetch from the service themselves.
const refreshChannel = "incidents:refresh"

// RedisTrigger signals refresh over Redis pub/sub so consoles on
// different hosts can share one trigger.
type RedisTrigger struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisTrigger connects to Redis and verifies the connection before
// returning, so callers can fall back cleanly.
func NewRedisTrigger(redisURL string, logger *log.Logger) (*RedisTrigger, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	if logger == nil {
		logger = log.New(log.Writer(), "[trigger] ", log.LstdFlags)
	}
	return &RedisTrigger{client: client, logger: logger}, nil
}

// Fire publishes a refresh nonce.
func (rt *RedisTrigger) Fire(ctx context.Context) error {
	if err := rt.client.Publish(ctx, refreshChannel, uuid.NewString()).Err(); err != nil {
		return fmt.Errorf("publish refresh: %w", err)
	}
	return nil
}

// Watch subscribes to the refresh channel until ctx is cancelled.
func (rt *RedisTrigger) Watch(ctx context.Context, onChange func()) error {
	sub := rt.client.Subscribe(ctx, refreshChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			rt.logger.Printf("refresh signal %s", msg.Payload)
			onChange()
		}
	}
}

// Close closes the Redis connection.
func (rt *RedisTrigger) Close() error {
	return rt.client.Close()
}
