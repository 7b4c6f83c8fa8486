package pgstore

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/store/storetest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// getTestDatabaseURL returns the test database URL, or "" when none is configured.
func getTestDatabaseURL() string {
	return os.Getenv("TEST_DATABASE_URL")
}

// setupTestStore creates a store on a table unique to the test.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	url := getTestDatabaseURL()
	if url == "" {
		t.Skip("Skipping test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	table := "tasks_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	s, err := Open(ctx, url, table)
	if err != nil {
		t.Skipf("Skipping test: database not available: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize())
		s.Close()
	})
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return setupTestStore(t)
	})
}

func TestUpdateKeepsUnsetKeysAbsent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tk := domain.New(uuid.NewString(), domain.Draft{Task: "t"}, created)

	if err := s.Put(ctx, tk); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Update(ctx, tk.ID, domain.Patch{Status: domain.Some(domain.StatusDone)}, created.Add(time.Second)); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var hasDeadline bool
	err := s.pool.QueryRow(ctx, "SELECT item ? 'deadline' FROM "+s.table+" WHERE id = $1", tk.ID).Scan(&hasDeadline)
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if hasDeadline {
		t.Error("expected no deadline key in stored document")
	}
}
