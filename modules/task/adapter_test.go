package task

import (
	"context"
	"errors"
	"net"
	"regexp"
	"testing"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/store/memstore"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientModule depends on the task module and exposes the adapter it receives.
type clientModule struct {
	port TaskPort
}

var _ mono.DependentModule = (*clientModule)(nil)

func (c *clientModule) Name() string { return "client" }
func (c *clientModule) Start(_ context.Context) error { return nil }
func (c *clientModule) Stop(_ context.Context) error { return nil }
func (c *clientModule) Dependencies() []string { return []string{"task"} }
func (c *clientModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		c.port = NewTaskAdapter(container)
	}
}

// freePort asks the kernel for an unused TCP port for the embedded NATS server.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// startTestApp runs the task module inside a mono application with embedded
// NATS and returns a TaskPort that goes through the request-reply services.
func startTestApp(t *testing.T) TaskPort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError),
		mono.WithJetStreamStorageDir(t.TempDir()),
		mono.WithNATSPort(freePort(t)),
	)
	require.NoError(t, err)

	client := &clientModule{}
	require.NoError(t, app.Register(NewModuleWithStore(memstore.New(), &mockLogger{})))
	require.NoError(t, app.Register(client))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, client.port)
	return client.port
}

func TestAdapter_RoundTrip(t *testing.T) {
	port := startTestApp(t)
	ctx := context.Background()

	created, err := port.CreateTask(ctx, domain.Draft{
		Task:      "write docs",
		Solutions: domain.Some([]string{}),
	})
	require.NoError(t, err)

	got, err := port.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "write docs", got.Task)
	assert.False(t, got.Deadline.IsSet())
	solutions, ok := got.Solutions.Get()
	assert.True(t, ok)
	assert.Empty(t, solutions)

	updated, err := port.UpdateTask(ctx, created.ID, domain.Patch{Status: domain.Some(domain.StatusDone)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, updated.Status)

	page, err := port.ListTasks(ctx, domain.Query{Status: domain.Some(domain.StatusDone)})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)

	require.NoError(t, port.DeleteTask(ctx, created.ID))
	_, err = port.GetTask(ctx, created.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAdapter_ErrorKindsSurvive(t *testing.T) {
	port := startTestApp(t)
	ctx := context.Background()

	_, err := port.UpdateTask(ctx, uuid.NewString(), domain.Patch{})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = port.CreateTask(ctx, domain.Draft{Task: ""})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	err = port.DeleteTask(ctx, uuid.NewString())
	assert.NoError(t, err)
}

var kebabCase = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestServiceNamesAreKebabCase(t *testing.T) {
	for _, name := range ServiceNames {
		assert.Regexp(t, kebabCase, name)
	}
}

func TestModuleStartsInApp(t *testing.T) {
	port := startTestApp(t)

	page, err := port.ListTasks(context.Background(), domain.Query{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Count)
}
