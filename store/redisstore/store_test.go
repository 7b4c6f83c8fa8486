package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/store/storetest"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore starts an in-process Redis and returns a store on it.
func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, mr
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		s, _ := setupTestStore(t)
		return s
	})
}

func TestKeysArePrefixedWithTable(t *testing.T) {
	s, mr := setupTestStore(t)
	tk := domain.New(uuid.NewString(), domain.Draft{Task: "t"}, time.Now())

	require.NoError(t, s.Put(context.Background(), tk))
	assert.True(t, mr.Exists("TaskTable:"+tk.ID))
}

func TestScanIgnoresOtherTables(t *testing.T) {
	s, mr := setupTestStore(t)
	require.NoError(t, mr.Set("OtherTable:x", `{"id":"x","task":"t","status":"done"}`))

	tasks, err := s.Scan(context.Background(), domain.Query{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestOpenFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), Config{Addr: addr, Table: "TaskTable"})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	s, _ := setupTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	assert.Error(t, New(client, "TaskTable").Ping(context.Background()))
}
