package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qamaits/identity-server/pkg/database"
)

const deadLetterKey = "mailer:deadletter"

// DeadLetter receives messages whose delivery failed permanently.
type DeadLetter interface {
	Push(ctx context.Context, entry DeadLetterEntry) error
}

// DeadLetterEntry records one permanently failed send for later
// inspection or replay.
type DeadLetterEntry struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Provider string    `json:"provider"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}

// redisDeadLetter appends failed sends to a Redis list.
type redisDeadLetter struct {
	redis *database.Redis
}

// NewRedisDeadLetter creates a dead-letter sink backed by Redis.
func NewRedisDeadLetter(redis *database.Redis) DeadLetter {
	return &redisDeadLetter{redis: redis}
}

func (d *redisDeadLetter) Push(ctx context.Context, entry DeadLetterEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode dead-letter entry: %w", err)
	}
	if err := d.redis.Client.RPush(ctx, deadLetterKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to push dead-letter entry: %w", err)
	}
	return nil
}
