package task

import (
	"context"

	domain "github.com/example/task-server/domain/task"
)

// Service names. The framework exposes them as services.task.<name> and
// requires kebab-case subject tokens.
const (
	ServiceCreateTask = "create-task"
	ServiceGetTask    = "get-task"
	ServiceUpdateTask = "update-task"
	ServiceDeleteTask = "delete-task"
	ServiceListTasks  = "list-tasks"
)

// ServiceNames lists every service the task module registers.
var ServiceNames = []string{
	ServiceCreateTask,
	ServiceGetTask,
	ServiceUpdateTask,
	ServiceDeleteTask,
	ServiceListTasks,
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest = domain.Draft

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the request for updating a task. Only the attributes
// present in the request are replaced.
type UpdateTaskRequest struct {
	TaskID string `json:"task_id"`
	domain.Patch
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest = domain.Query

// ErrorBody carries a failed outcome across the service boundary.
type ErrorBody struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// TaskResponse is the response for create, get and update.
type TaskResponse struct {
	Task  *domain.Task `json:"task,omitempty"`
	Error *ErrorBody   `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool       `json:"deleted"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
	Limit int           `json:"limit"`
	Error *ErrorBody    `json:"error,omitempty"`
}

// TaskPort defines the task operations used by driving adapters.
// Errors are classified with domain.KindOf.
type TaskPort interface {
	CreateTask(ctx context.Context, d domain.Draft) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, p domain.Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ListTasks(ctx context.Context, q domain.Query) (*domain.Page, error)
}

func errorBody(err error) *ErrorBody {
	if err == nil {
		return nil
	}
	return &ErrorBody{Kind: domain.KindOf(err), Message: err.Error()}
}

func (b *ErrorBody) err() error {
	if b == nil {
		return nil
	}
	return domain.ErrorFromKind(b.Kind, b.Message)
}
