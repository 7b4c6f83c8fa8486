// Package redisstore stores task records as JSON strings in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/redis/go-redis/v9"
)

const (
	scanBatch  = 100
	maxRetries = 5
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Table    string
	PoolSize int
}

// DefaultConfig returns the default Redis configuration.
func DefaultConfig() Config {
	return Config{
		Addr:     "localhost:6379",
		Table:    "TaskTable",
		PoolSize: 10,
	}
}

// Store keeps each task under "<table>:<id>".
type Store struct {
	client *redis.Client
	prefix string
}

var (
	_ domain.Store  = (*Store)(nil)
	_ domain.Pinger = (*Store)(nil)
)

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return New(client, cfg.Table), nil
}

// New wraps an existing client.
func New(client *redis.Client, table string) *Store {
	return &Store{client: client, prefix: table + ":"}
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound(id)
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return decode(data)
}

func (s *Store) Put(ctx context.Context, t *domain.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("redis marshal error: %w", err)
	}
	if err := s.client.Set(ctx, s.key(t.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Update watches the key and commits the patched document in a MULTI block,
// retrying when another client modifies the key first.
func (s *Store) Update(ctx context.Context, id string, p domain.Patch, at time.Time) (*domain.Task, error) {
	key := s.key(id)
	var updated *domain.Task

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.NotFound(id)
			}
			return fmt.Errorf("redis get error: %w", err)
		}

		t, err := decode(data)
		if err != nil {
			return err
		}
		t.Apply(p, at)

		newData, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("redis marshal error: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = t
		return nil
	}

	for range maxRetries {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("redis update of %s: max retries exceeded", id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Scan iterates the table's keys with SCAN, fetches each batch with MGET and
// returns the q.Limit oldest matches.
func (s *Store) Scan(ctx context.Context, q domain.Query) ([]domain.Task, error) {
	var result []domain.Task
	pattern := s.prefix + "*"

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan error: %w", err)
		}

		if len(keys) > 0 {
			values, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("redis mget error: %w", err)
			}
			for _, v := range values {
				// nil when the key was deleted after SCAN returned it
				str, ok := v.(string)
				if !ok {
					continue
				}
				t, err := decode([]byte(str))
				if err != nil {
					return nil, err
				}
				if q.Matches(t) {
					result = append(result, *t)
				}
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if result == nil {
		return []domain.Task{}, nil
	}
	domain.SortByCreation(result)
	if len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Ping checks if the Redis connection is healthy.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(data []byte) (*domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("redis unmarshal error: %w", err)
	}
	return &t, nil
}
