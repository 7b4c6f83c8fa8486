package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-server/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// It implements TaskPort and rebuilds typed errors from response bodies.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *taskAdapter) CreateTask(ctx context.Context, d domain.Draft) (*domain.Task, error) {
	req := CreateTaskRequest(d)
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceCreateTask, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceGetTask, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (a *taskAdapter) UpdateTask(ctx context.Context, taskID string, p domain.Patch) (*domain.Task, error) {
	req := UpdateTaskRequest{TaskID: taskID, Patch: p}
	var resp TaskResponse
	if err := call(ctx, a.container, ServiceUpdateTask, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

func (a *taskAdapter) DeleteTask(ctx context.Context, taskID string) error {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return err
	}
	return resp.Error.err()
}

func (a *taskAdapter) ListTasks(ctx context.Context, q domain.Query) (*domain.Page, error) {
	req := ListTasksRequest(q)
	var resp ListTasksResponse
	if err := call(ctx, a.container, ServiceListTasks, &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.err(); err != nil {
		return nil, err
	}
	return &domain.Page{Tasks: resp.Tasks, Count: resp.Count, Limit: resp.Limit}, nil
}
