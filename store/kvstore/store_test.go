package kvstore

import (
	"context"
	"net"
	"testing"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/store/storetest"
	"github.com/go-monolith/mono"
	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort asks the kernel for an unused TCP port for the embedded NATS server.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// newTestBucket starts a mono application with embedded NATS and an
// in-memory bucket, and returns that bucket.
func newTestBucket(t *testing.T) kvjetstream.KVStoragePort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithJetStreamStorageDir(t.TempDir()),
		mono.WithNATSPort(freePort(t)),
	)
	require.NoError(t, err)

	plugin, err := kvjetstream.New(kvjetstream.Config{
		Buckets: []kvjetstream.BucketConfig{
			{
				Name:        "TaskTable",
				Description: "Test task bucket",
				Storage:     kvjetstream.MemoryStorage,
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, app.RegisterPlugin(plugin, "kv"))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	bucket := plugin.Bucket("TaskTable")
	require.NotNil(t, bucket)
	return bucket
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return New(newTestBucket(t))
	})
}

func TestScanEmptyBucket(t *testing.T) {
	s := New(newTestBucket(t))

	tasks, err := s.Scan(context.Background(), domain.Query{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	s := New(newTestBucket(t))

	_, err := s.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestScanSkipsDeletedKeys(t *testing.T) {
	bucket := newTestBucket(t)
	s := New(bucket)
	ctx := context.Background()

	kept := domain.New(uuid.NewString(), domain.Draft{Task: "kept"}, time.Now().UTC())
	gone := domain.New(uuid.NewString(), domain.Draft{Task: "gone"}, time.Now().UTC())
	require.NoError(t, s.Put(ctx, kept))
	require.NoError(t, s.Put(ctx, gone))
	require.NoError(t, s.Delete(ctx, gone.ID))

	tasks, err := s.Scan(ctx, domain.Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, kept.ID, tasks[0].ID)
}
