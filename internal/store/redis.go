package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/redis/go-redis/v9"

	"minicart/internal/domain"
)

// Redis stores the serialized snapshot under a fixed key, the way a browser
// keeps it in local storage.
type Redis struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

func NewRedis(client *redis.Client, key string, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Redis{client: client, key: key, logger: logger}
}

func (r *Redis) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", r.key, err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// Unreadable stored data counts as nothing stored.
		r.logger.Printf("store: discarding unparsable snapshot under %q: %v", r.key, err)
		return nil, nil
	}
	return &snapshot, nil
}

func (r *Redis) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", r.key, err)
	}
	return nil
}
