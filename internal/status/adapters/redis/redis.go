package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

const keyPrefix = "videoforge:status:"

// Store persists status records in Redis with a TTL, letting multiple
// service instances share request state.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
	logger ports.Logger
}

func NewStore(cfg *config.StatusConfig, logger ports.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis status store initialized", "addr", cfg.Redis.Addr)
	return &Store{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func (s *Store) Set(ctx context.Context, requestID string, record ports.StatusRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+requestID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, requestID string) (ports.StatusRecord, error) {
	data, err := s.client.Get(ctx, keyPrefix+requestID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ports.StatusRecord{}, fmt.Errorf("%w: %s", ports.ErrStatusNotFound, requestID)
		}
		return ports.StatusRecord{}, fmt.Errorf("failed to get status: %w", err)
	}

	var record ports.StatusRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return ports.StatusRecord{}, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return record, nil
}

func (s *Store) Delete(ctx context.Context, requestID string) error {
	if err := s.client.Del(ctx, keyPrefix+requestID).Err(); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}
	return nil
}

// Close releases the underlying client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
