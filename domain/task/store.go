package task

import (
	"context"
	"time"
)

// Store is the key-value collaborator that holds task records keyed by id.
//
// Implementations return ErrNotFound (possibly wrapped) for missing keys and
// any other error for backend failures.
type Store interface {
	// Get returns the record stored under id.
	Get(ctx context.Context, id string) (*Task, error)
	// Put writes the full record, replacing any record with the same id.
	Put(ctx context.Context, t *Task) error
	// Update applies p and stamps UpdatedAt with at, only if id exists.
	// The existence check and the write are one conditional operation.
	// It returns the record as stored after the update.
	Update(ctx context.Context, id string, p Patch, at time.Time) (*Task, error)
	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Scan returns at most q.Limit records that match q's status filter.
	Scan(ctx context.Context, q Query) ([]Task, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
