// Package tools exposes the task operations as agent-callable tools: named
// definitions with JSON Schema inputs whose calls always yield a text outcome.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/modules/task"
)

// Tool names as agents call them.
const (
	ToolCreateTask = "create_task"
	ToolGetTask    = "get_task"
	ToolUpdateTask = "update_task"
	ToolDeleteTask = "delete_task"
	ToolListTasks  = "list_tasks"
)

// ToolNames lists every tool in manifest order.
var ToolNames = []string{
	ToolCreateTask,
	ToolGetTask,
	ToolUpdateTask,
	ToolDeleteTask,
	ToolListTasks,
}

// Tool describes one callable tool. Service names the task module service
// that performs it.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
	Service     string          `json:"service"`

	call func(ctx context.Context, args json.RawMessage) outcome
}

// Registry holds the task tools and dispatches calls to a TaskPort.
type Registry struct {
	tasks task.TaskPort
	now   func() time.Time
	tools []Tool
}

// NewRegistry builds the five task tools over port.
func NewRegistry(port task.TaskPort) *Registry {
	r := &Registry{tasks: port, now: time.Now}
	r.tools = []Tool{
		{
			Name:        ToolCreateTask,
			Service:     task.ServiceCreateTask,
			Description: "Create a new task with optional time estimate, deadline, and solutions",
			InputSchema: createTaskSchema,
			call:        r.createTask,
		},
		{
			Name:        ToolGetTask,
			Service:     task.ServiceGetTask,
			Description: "Retrieve a specific task by its unique identifier",
			InputSchema: taskIDSchema,
			call:        r.getTask,
		},
		{
			Name:        ToolUpdateTask,
			Service:     task.ServiceUpdateTask,
			Description: "Update an existing task with new information",
			InputSchema: updateTaskSchema,
			call:        r.updateTask,
		},
		{
			Name:        ToolDeleteTask,
			Service:     task.ServiceDeleteTask,
			Description: "Permanently delete a task from the system",
			InputSchema: taskIDSchema,
			call:        r.deleteTask,
		},
		{
			Name:        ToolListTasks,
			Service:     task.ServiceListTasks,
			Description: "Retrieve a list of tasks, optionally filtered by status",
			InputSchema: listTasksSchema,
			call:        r.listTasks,
		},
	}
	return r
}

// Tools returns the tool definitions in a stable order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns the tool called name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Call runs the named tool. It never fails: unknown tools, malformed
// arguments and operation errors all come back as an error Result.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) Result {
	if t, ok := r.Lookup(name); ok {
		return t.call(ctx, args).render()
	}
	err := &domain.ValidationError{Field: "name", Reason: fmt.Sprintf("unknown tool %q", name)}
	return failure(err, "", r.now()).render()
}

func decodeArgs(args json.RawMessage, v any) error {
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &domain.ValidationError{Field: "arguments", Reason: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

func (r *Registry) createTask(ctx context.Context, args json.RawMessage) outcome {
	var d domain.Draft
	if err := decodeArgs(args, &d); err != nil {
		return failure(err, "", r.now())
	}

	t, err := r.tasks.CreateTask(ctx, d)
	if err != nil {
		return failure(err, "", r.now())
	}
	return outcome{
		Success:   true,
		CreatedID: t.ID,
		Message:   fmt.Sprintf("Task created successfully with ID: %s", t.ID),
		Task:      t,
	}
}

func (r *Registry) getTask(ctx context.Context, args json.RawMessage) outcome {
	var req task.GetTaskRequest
	if err := decodeArgs(args, &req); err != nil {
		return failure(err, "", r.now())
	}

	t, err := r.tasks.GetTask(ctx, req.TaskID)
	if err != nil {
		return failure(err, req.TaskID, r.now())
	}
	return outcome{Success: true, Task: t}
}

func (r *Registry) updateTask(ctx context.Context, args json.RawMessage) outcome {
	var req task.UpdateTaskRequest
	if err := decodeArgs(args, &req); err != nil {
		return failure(err, "", r.now())
	}

	t, err := r.tasks.UpdateTask(ctx, req.TaskID, req.Patch)
	if err != nil {
		return failure(err, req.TaskID, r.now())
	}
	return outcome{
		Success: true,
		TaskID:  req.TaskID,
		Message: "Task updated successfully",
		Task:    t,
	}
}

func (r *Registry) deleteTask(ctx context.Context, args json.RawMessage) outcome {
	var req task.DeleteTaskRequest
	if err := decodeArgs(args, &req); err != nil {
		return failure(err, "", r.now())
	}

	if err := r.tasks.DeleteTask(ctx, req.TaskID); err != nil {
		return failure(err, req.TaskID, r.now())
	}
	return outcome{
		Success:   true,
		Message:   fmt.Sprintf("Task deleted successfully: %s", req.TaskID),
		TaskID:    req.TaskID,
		Timestamp: r.now().UTC().Format(timestampLayout),
	}
}

func (r *Registry) listTasks(ctx context.Context, args json.RawMessage) outcome {
	var q domain.Query
	if err := decodeArgs(args, &q); err != nil {
		return failure(err, "", r.now())
	}

	page, err := r.tasks.ListTasks(ctx, q)
	if err != nil {
		return failure(err, "", r.now())
	}

	var filter any = "none"
	if status, ok := q.Status.Get(); ok && status != "" {
		filter = map[string]domain.Status{"status": status}
	}
	tasks := page.Tasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	count := page.Count
	return outcome{
		Success:   true,
		Filter:    filter,
		Limit:     page.Limit,
		Tasks:     tasks,
		Count:     &count,
		Timestamp: r.now().UTC().Format(timestampLayout),
	}
}
