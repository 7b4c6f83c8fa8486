// Package storetest holds the behavioural test-suite shared by every task store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) domain.Store

// Run exercises the domain.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) { testPutGetRoundTrip(t, newStore(t)) })
	t.Run("OptionalsStayAbsent", func(t *testing.T) { testOptionalsStayAbsent(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("UpdateReplacesSetFields", func(t *testing.T) { testUpdateReplacesSetFields(t, newStore(t)) })
	t.Run("UpdateWithoutFieldsStampsTime", func(t *testing.T) { testUpdateWithoutFields(t, newStore(t)) })
	t.Run("UpdateMissingWritesNothing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("UpdateNilSolutionsStoresEmptyList", func(t *testing.T) { testUpdateNilSolutions(t, newStore(t)) })
	t.Run("DeleteIsIdempotent", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("ScanFiltersAndLimits", func(t *testing.T) { testScan(t, newStore(t)) })
	t.Run("ScanOrdersByCreation", func(t *testing.T) { testScanOrder(t, newStore(t)) })
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTask(desc string, status domain.Status, offset time.Duration) *domain.Task {
	return domain.New(uuid.NewString(), domain.Draft{Task: desc, Status: domain.Some(status)}, base.Add(offset))
}

func assertSameTask(t *testing.T, want, got *domain.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Task, got.Task)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %v, got %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at: want %v, got %v", want.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, want.TimeToComplete, got.TimeToComplete)
	assert.Equal(t, want.Deadline, got.Deadline)
	assert.Equal(t, want.Solutions, got.Solutions)
}

func testPutGetRoundTrip(t *testing.T, s domain.Store) {
	ctx := context.Background()
	tk := domain.New(uuid.NewString(), domain.Draft{
		Task:           "write report",
		Status:         domain.Some(domain.StatusInProgress),
		TimeToComplete: domain.Some(90),
		Deadline:       domain.Some("2026-12-31T17:00:00Z"),
		Solutions:      domain.Some([]string{"outline first", "reuse last quarter"}),
	}, base)

	require.NoError(t, s.Put(ctx, tk))

	got, err := s.Get(ctx, tk.ID)
	require.NoError(t, err)
	assertSameTask(t, tk, got)
}

func testOptionalsStayAbsent(t *testing.T, s domain.Store) {
	ctx := context.Background()
	bare := newTask("buy milk", domain.StatusNotStarted, 0)
	empty := domain.New(uuid.NewString(), domain.Draft{Task: "empty list", Solutions: domain.Some([]string{})}, base)

	require.NoError(t, s.Put(ctx, bare))
	require.NoError(t, s.Put(ctx, empty))

	got, err := s.Get(ctx, bare.ID)
	require.NoError(t, err)
	assert.False(t, got.TimeToComplete.IsSet())
	assert.False(t, got.Deadline.IsSet())
	assert.False(t, got.Solutions.IsSet())

	got, err = s.Get(ctx, empty.ID)
	require.NoError(t, err)
	solutions, ok := got.Solutions.Get()
	assert.True(t, ok, "empty solutions must be stored, not dropped")
	assert.Empty(t, solutions)
}

func testGetMissing(t *testing.T, s domain.Store) {
	_, err := s.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func testUpdateReplacesSetFields(t *testing.T, s domain.Store) {
	ctx := context.Background()
	tk := domain.New(uuid.NewString(), domain.Draft{
		Task:           "t",
		Status:         domain.Some(domain.StatusInProgress),
		TimeToComplete: domain.Some(15),
		Solutions:      domain.Some([]string{"a", "b"}),
	}, base)
	require.NoError(t, s.Put(ctx, tk))

	at := base.Add(time.Hour)
	got, err := s.Update(ctx, tk.ID, domain.Patch{
		Status:    domain.Some(domain.StatusDone),
		Solutions: domain.Some([]string{"c"}),
	}, at)
	require.NoError(t, err)

	assert.Equal(t, "t", got.Task)
	assert.Equal(t, domain.StatusDone, got.Status)
	assert.Equal(t, domain.Some(15), got.TimeToComplete)
	assert.Equal(t, domain.Some([]string{"c"}), got.Solutions)
	assert.True(t, got.UpdatedAt.Equal(at))
	assert.True(t, got.CreatedAt.Equal(base))

	stored, err := s.Get(ctx, tk.ID)
	require.NoError(t, err)
	assertSameTask(t, got, stored)
}

func testUpdateWithoutFields(t *testing.T, s domain.Store) {
	ctx := context.Background()
	tk := newTask("t", domain.StatusNotStarted, 0)
	require.NoError(t, s.Put(ctx, tk))

	at := base.Add(time.Minute)
	got, err := s.Update(ctx, tk.ID, domain.Patch{}, at)
	require.NoError(t, err)

	want := tk.Clone()
	want.UpdatedAt = at
	assertSameTask(t, want, got)
}

func testUpdateMissing(t *testing.T, s domain.Store) {
	ctx := context.Background()
	id := uuid.NewString()

	_, err := s.Update(ctx, id, domain.Patch{Task: domain.Some("ghost")}, base)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	_, err = s.Get(ctx, id)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "update must not create a record, got %v", err)
}

func testUpdateNilSolutions(t *testing.T, s domain.Store) {
	ctx := context.Background()
	tk := domain.New(uuid.NewString(), domain.Draft{
		Task:      "t",
		Solutions: domain.Some([]string{"a"}),
	}, base)
	require.NoError(t, s.Put(ctx, tk))

	_, err := s.Update(ctx, tk.ID, domain.Patch{Solutions: domain.Some([]string(nil))}, base.Add(time.Minute))
	require.NoError(t, err)

	got, err := s.Get(ctx, tk.ID)
	require.NoError(t, err)
	solutions, ok := got.Solutions.Get()
	assert.True(t, ok, "solutions replaced by an empty list must stay present")
	assert.Empty(t, solutions)
}

func testDelete(t *testing.T, s domain.Store) {
	ctx := context.Background()
	tk := newTask("t", domain.StatusNotStarted, 0)
	require.NoError(t, s.Put(ctx, tk))

	require.NoError(t, s.Delete(ctx, tk.ID))
	_, err := s.Get(ctx, tk.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	require.NoError(t, s.Delete(ctx, tk.ID))
	require.NoError(t, s.Delete(ctx, uuid.NewString()))
}

func testScan(t *testing.T, s domain.Store) {
	ctx := context.Background()
	for i, st := range []domain.Status{
		domain.StatusDone, domain.StatusInProgress, domain.StatusDone,
		domain.StatusDone, domain.StatusNotStarted,
	} {
		require.NoError(t, s.Put(ctx, newTask("t", st, time.Duration(i)*time.Second)))
	}

	all, err := s.Scan(ctx, domain.Query{Limit: domain.DefaultListLimit})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	done, err := s.Scan(ctx, domain.Query{Status: domain.Some(domain.StatusDone), Limit: 2})
	require.NoError(t, err)
	assert.Len(t, done, 2)
	for _, tk := range done {
		assert.Equal(t, domain.StatusDone, tk.Status)
	}

	none, err := s.Scan(ctx, domain.Query{Status: domain.Some(domain.Status("Done")), Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testScanOrder(t *testing.T, s domain.Store) {
	ctx := context.Background()

	// Inserted newest first so neither insertion nor key order matches creation order.
	var want []string
	for i := 5; i >= 0; i-- {
		tk := newTask("t", domain.StatusDone, time.Duration(i)*time.Minute)
		require.NoError(t, s.Put(ctx, tk))
		want = append([]string{tk.ID}, want...)
	}

	all, err := s.Scan(ctx, domain.Query{Limit: domain.DefaultListLimit})
	require.NoError(t, err)
	assert.Equal(t, want, ids(all))

	first, err := s.Scan(ctx, domain.Query{Status: domain.Some(domain.StatusDone), Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, want[:2], ids(first), "the cap must keep the oldest matches")
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tk.ID)
	}
	return out
}
