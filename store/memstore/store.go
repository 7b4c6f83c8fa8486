// Package memstore keeps task records in process memory.
package memstore

import (
	"context"
	"sync"
	"time"

	domain "github.com/example/task-server/domain/task"
)

// Store provides in-memory task storage.
type Store struct {
	tasks map[string]*domain.Task
	mu    sync.RWMutex
}

var _ domain.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		tasks: make(map[string]*domain.Task),
	}
}

// Get returns a copy of the task stored under id.
func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, found := s.tasks[id]
	if !found {
		return nil, domain.NotFound(id)
	}
	return t.Clone(), nil
}

// Put stores a copy of t.
func (s *Store) Put(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[t.ID] = t.Clone()
	return nil
}

// Update applies p to the task under id while holding the write lock.
func (s *Store) Update(_ context.Context, id string, p domain.Patch, at time.Time) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, found := s.tasks[id]
	if !found {
		return nil, domain.NotFound(id)
	}
	t.Apply(p, at)
	return t.Clone(), nil
}

// Delete removes id if present.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tasks, id)
	return nil
}

// Scan returns matching tasks ordered by creation time.
func (s *Store) Scan(_ context.Context, q domain.Query) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Task, 0, min(len(s.tasks), q.Limit))
	for _, t := range s.tasks {
		if q.Matches(t) {
			result = append(result, *t.Clone())
		}
	}
	domain.SortByCreation(result)
	if len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
