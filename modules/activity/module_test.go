package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/task-server/events"
	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestHandlersRecordEntries(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()

	if err := m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: "a", Task: "buy milk", Status: "not started"}, nil); err != nil {
		t.Fatalf("handleTaskCreated() error = %v", err)
	}
	if err := m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: "a", Status: "done", Fields: []string{"status"}}, nil); err != nil {
		t.Fatalf("handleTaskUpdated() error = %v", err)
	}
	if err := m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: "a", DeletedAt: time.Now()}, nil); err != nil {
		t.Fatalf("handleTaskDeleted() error = %v", err)
	}

	entries := m.Recent(0)
	if len(entries) != 3 {
		t.Fatalf("Recent(0) returned %d entries, want 3", len(entries))
	}

	wantTypes := []string{"task_deleted", "task_updated", "task_created"}
	for i, want := range wantTypes {
		if entries[i].Type != want {
			t.Errorf("entries[%d].Type = %q, want %q", i, entries[i].Type, want)
		}
	}
}

func TestFeedIsBounded(t *testing.T) {
	m := NewModule(&mockLogger{})

	for i := range MaxEntries + 25 {
		m.record(fmt.Sprintf("task-%d", i), "task_created", "created")
	}

	entries := m.Recent(MaxEntries + 100)
	if len(entries) != MaxEntries {
		t.Fatalf("Recent() returned %d entries, want %d", len(entries), MaxEntries)
	}
	if want := fmt.Sprintf("task-%d", MaxEntries+24); entries[0].TaskID != want {
		t.Errorf("newest entry = %q, want %q", entries[0].TaskID, want)
	}
	if want := "task-25"; entries[len(entries)-1].TaskID != want {
		t.Errorf("oldest entry = %q, want %q", entries[len(entries)-1].TaskID, want)
	}
}

func TestHandleRecent(t *testing.T) {
	m := NewModule(&mockLogger{})
	for i := range 5 {
		m.record(fmt.Sprintf("task-%d", i), "task_created", "created")
	}

	resp, err := m.handleRecent(context.Background(), RecentRequest{Limit: 2}, nil)
	if err != nil {
		t.Fatalf("handleRecent() error = %v", err)
	}
	if resp.Count != 2 || len(resp.Entries) != 2 {
		t.Errorf("handleRecent() count = %d, entries = %d, want 2", resp.Count, len(resp.Entries))
	}
}
