package memstore

import (
	"context"
	"testing"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return New()
	})
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	tk := domain.New("id-1", domain.Draft{Task: "t", Solutions: domain.Some([]string{"a"})}, time.Now())
	if err := s.Put(ctx, tk); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Task = "changed"
	sol, _ := got.Solutions.Get()
	sol[0] = "changed"

	again, _ := s.Get(ctx, "id-1")
	if again.Task != "t" {
		t.Errorf("Task = %q, want %q", again.Task, "t")
	}
	if sol, _ := again.Solutions.Get(); sol[0] != "a" {
		t.Errorf("Solutions[0] = %q, want %q", sol[0], "a")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
