package task

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/google/uuid"
)

// Repository is the task facade over a Store: it validates input, assigns ids
// and timestamps, and classifies store errors.
type Repository struct {
	store domain.Store
	now   func() time.Time
	newID func() string
}

var _ TaskPort = (*Repository)(nil)

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock sets the time source.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator sets the id source.
func WithIDGenerator(newID func() string) RepositoryOption {
	return func(r *Repository) { r.newID = newID }
}

// NewRepository creates a repository over store.
func NewRepository(store domain.Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying store.
func (r *Repository) Store() domain.Store {
	return r.store
}

func (r *Repository) timestamp() time.Time {
	return r.now().UTC()
}

// CreateTask stores a new task. There is no duplicate detection.
func (r *Repository) CreateTask(ctx context.Context, d domain.Draft) (*domain.Task, error) {
	d = d.Normalize()
	now := r.timestamp()
	if err := d.Validate(now); err != nil {
		return nil, err
	}

	t := domain.New(r.newID(), d, now)
	if err := r.store.Put(ctx, t); err != nil {
		return nil, storeError("put", err)
	}
	return t, nil
}

// GetTask returns the task stored under taskID.
func (r *Repository) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if err := domain.ValidateID(taskID); err != nil {
		return nil, err
	}
	t, err := r.store.Get(ctx, taskID)
	if err != nil {
		return nil, storeError("get", err)
	}
	return t, nil
}

// UpdateTask replaces the attributes set in p and refreshes updated_at, even
// when p is empty. A missing task yields ErrNotFound and nothing is written.
func (r *Repository) UpdateTask(ctx context.Context, taskID string, p domain.Patch) (*domain.Task, error) {
	if err := domain.ValidateID(taskID); err != nil {
		return nil, err
	}
	p = p.Normalize()
	now := r.timestamp()
	if err := p.Validate(now); err != nil {
		return nil, err
	}

	t, err := r.store.Update(ctx, taskID, p, now)
	if err != nil {
		return nil, storeError("update", err)
	}
	return t, nil
}

// DeleteTask removes taskID without checking that it exists.
func (r *Repository) DeleteTask(ctx context.Context, taskID string) error {
	if err := domain.ValidateID(taskID); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, taskID); err != nil {
		return storeError("delete", err)
	}
	return nil
}

// ListTasks returns at most q.Limit tasks matching q's status filter.
// Only one page is ever returned.
func (r *Repository) ListTasks(ctx context.Context, q domain.Query) (*domain.Page, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	tasks, err := r.store.Scan(ctx, q)
	if err != nil {
		return nil, storeError("scan", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &domain.Page{Tasks: tasks, Count: len(tasks), Limit: q.Limit}, nil
}

func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}
