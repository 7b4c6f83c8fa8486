package tools

import (
	"context"
	"encoding/json"
	"testing"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/modules/task"
	"github.com/example/task-server/store/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(task.NewRepository(memstore.New()))
}

// call runs a tool and decodes its text outcome.
func call(t *testing.T, reg *Registry, name, args string) (map[string]any, bool) {
	t.Helper()
	res := reg.Call(context.Background(), name, json.RawMessage(args))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Text), &out), "outcome must be JSON: %s", res.Text)
	return out, res.IsError
}

func TestToolsManifest(t *testing.T) {
	reg := newTestRegistry(t)
	tools := reg.Tools()

	names := make([]string, 0, len(tools))
	services := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		services = append(services, tool.Service)
		assert.NotEmpty(t, tool.Description)
		assert.True(t, json.Valid(tool.InputSchema), "schema for %s must be valid JSON", tool.Name)
	}
	assert.Equal(t, ToolNames, names)
	assert.Equal(t, task.ServiceNames, services)
}

func TestLookupMapsToolToService(t *testing.T) {
	reg := newTestRegistry(t)

	tool, ok := reg.Lookup("create_task")
	require.True(t, ok)
	assert.Equal(t, "create-task", tool.Service)

	_, ok = reg.Lookup("create-task")
	assert.False(t, ok, "service names are not tool names")
}

func TestCreateThenGet(t *testing.T) {
	reg := newTestRegistry(t)

	out, isErr := call(t, reg, "create_task", `{"task":"buy milk","time_to_complete":15}`)
	require.False(t, isErr, "%v", out)
	assert.Equal(t, true, out["success"])
	id, _ := out["taskId"].(string)
	require.NotEmpty(t, id)
	assert.Contains(t, out["message"], id)

	out, isErr = call(t, reg, "get_task", `{"task_id":"`+id+`"}`)
	require.False(t, isErr)
	got := out["task"].(map[string]any)
	assert.Equal(t, "buy milk", got["task"])
	assert.Equal(t, "not started", got["status"])
	assert.Equal(t, float64(15), got["time_to_complete"])
	assert.NotContains(t, got, "deadline")
	assert.NotContains(t, got, "solutions")
}

func TestGetMissingIsNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	id := uuid.NewString()

	out, isErr := call(t, reg, "get_task", `{"task_id":"`+id+`"}`)
	assert.True(t, isErr)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, string(domain.KindNotFound), out["kind"])
	assert.Equal(t, id, out["task_id"])
	assert.NotEmpty(t, out["timestamp"])
}

func TestUpdateAndList(t *testing.T) {
	reg := newTestRegistry(t)

	out, _ := call(t, reg, "create_task", `{"task":"t","status":"in progress"}`)
	id := out["taskId"].(string)

	out, isErr := call(t, reg, "update_task", `{"task_id":"`+id+`","status":"done"}`)
	require.False(t, isErr, "%v", out)
	assert.Equal(t, "Task updated successfully", out["message"])
	assert.Equal(t, "done", out["task"].(map[string]any)["status"])

	out, isErr = call(t, reg, "list_tasks", `{"status":"done","limit":2}`)
	require.False(t, isErr)
	assert.Equal(t, float64(1), out["count"])
	assert.Equal(t, float64(2), out["limit"])
	assert.Equal(t, map[string]any{"status": "done"}, out["filter"])

	out, isErr = call(t, reg, "list_tasks", `{}`)
	require.False(t, isErr)
	assert.Equal(t, "none", out["filter"])
	assert.Equal(t, float64(domain.DefaultListLimit), out["limit"])
}

func TestListEmptyRendersEmptyArray(t *testing.T) {
	reg := newTestRegistry(t)

	res := reg.Call(context.Background(), "list_tasks", nil)
	require.False(t, res.IsError)
	assert.Contains(t, res.Text, `"tasks": []`)
	assert.Contains(t, res.Text, `"count": 0`)
}

func TestDeleteAlwaysSucceeds(t *testing.T) {
	reg := newTestRegistry(t)
	id := uuid.NewString()

	out, isErr := call(t, reg, "delete_task", `{"task_id":"`+id+`"}`)
	assert.False(t, isErr)
	assert.Equal(t, "Task deleted successfully: "+id, out["message"])
}

func TestValidationOutcomes(t *testing.T) {
	reg := newTestRegistry(t)

	tests := []struct {
		name string
		tool string
		args string
	}{
		{"unknown tool", "drop_table", `{}`},
		{"malformed json", "create_task", `{"task":`},
		{"wrong type", "create_task", `{"task":"t","time_to_complete":"soon"}`},
		{"fractional minutes", "create_task", `{"task":"t","time_to_complete":1.5}`},
		{"missing task", "create_task", `{}`},
		{"past deadline", "create_task", `{"task":"t","deadline":"2001-01-01T00:00:00Z"}`},
		{"bad id", "get_task", `{"task_id":"42"}`},
		{"limit too large", "list_tasks", `{"limit":101}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, isErr := call(t, reg, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, string(domain.KindValidation), out["kind"])
		})
	}
}
