// Package kvstore stores task records in a JetStream key-value bucket
// provided by the mono kv-jetstream plugin.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-server/domain/task"
	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultMaxRetries bounds the optimistic update loop.
const DefaultMaxRetries = 5

// ErrTooManyConflicts is returned when an update keeps losing revision races.
var ErrTooManyConflicts = errors.New("kvstore: max retries exceeded on revision conflict")

// Store keeps one JSON document per task, keyed by id.
type Store struct {
	bucket     kvjetstream.KVStoragePort
	maxRetries int
}

var _ domain.Store = (*Store)(nil)

// New wraps a bucket obtained from the kv-jetstream plugin.
func New(bucket kvjetstream.KVStoragePort) *Store {
	return &Store{bucket: bucket, maxRetries: DefaultMaxRetries}
}

func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	data, err := s.bucket.Get(id)
	if err != nil {
		if errors.Is(err, kvjetstream.ErrKeyNotFound) {
			return nil, domain.NotFound(id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	// The plugin reports a missing key as nil data without an error.
	if data == nil {
		return nil, domain.NotFound(id)
	}
	return decode(data)
}

func (s *Store) Put(_ context.Context, t *domain.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := s.bucket.Set(t.ID, data, 0); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

// Update reads the current revision and writes the patched document only if
// the revision is unchanged, retrying on conflict.
func (s *Store) Update(ctx context.Context, id string, p domain.Patch, at time.Time) (*domain.Task, error) {
	for range s.maxRetries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := s.bucket.GetEntry(id)
		if err != nil {
			if errors.Is(err, kvjetstream.ErrKeyNotFound) {
				return nil, domain.NotFound(id)
			}
			return nil, fmt.Errorf("failed to get task: %w", err)
		}

		t, err := decode(entry.Value)
		if err != nil {
			return nil, err
		}
		t.Apply(p, at)

		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal task: %w", err)
		}

		_, err = s.bucket.Update(id, data, 0, entry.Revision)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, kvjetstream.ErrRevisionMismatch) {
			continue
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return nil, ErrTooManyConflicts
}

func (s *Store) Delete(_ context.Context, id string) error {
	if err := s.bucket.Delete(id); err != nil && !errors.Is(err, kvjetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Scan reads every key in the bucket, keeps the matches and returns the
// q.Limit oldest of them.
func (s *Store) Scan(ctx context.Context, q domain.Query) ([]domain.Task, error) {
	keys, err := s.bucket.Keys()
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) || errors.Is(err, kvjetstream.ErrKeyNotFound) {
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	result := make([]domain.Task, 0, min(len(keys), q.Limit))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.bucket.Get(key)
		if err != nil {
			if errors.Is(err, kvjetstream.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get task %s: %w", key, err)
		}
		// Deleted between Keys and Get.
		if data == nil {
			continue
		}
		t, err := decode(data)
		if err != nil {
			return nil, err
		}
		if q.Matches(t) {
			result = append(result, *t)
		}
	}

	domain.SortByCreation(result)
	if len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func decode(data []byte) (*domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &t, nil
}
