package task

import (
	"context"
	"time"

	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/events"
	"github.com/go-monolith/mono"
)

// Service handlers never return a transport error for a failed operation:
// the outcome travels in the response body so callers can classify it.

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.repo.CreateTask(ctx, req)
	if err != nil {
		m.logFailure(ServiceCreateTask, "", err)
		return TaskResponse{Error: errorBody(err)}, nil
	}

	m.publish(ServiceCreateTask, t.ID, func() error {
		return events.TaskCreatedV1.Publish(m.eventBus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			Task:      t.Task,
			Status:    string(t.Status),
			CreatedAt: t.CreatedAt,
		}, nil)
	})

	m.logger.Info("Task created", "task_id", t.ID, "status", t.Status)
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		m.logFailure(ServiceGetTask, req.TaskID, err)
		return TaskResponse{Error: errorBody(err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.repo.UpdateTask(ctx, req.TaskID, req.Patch)
	if err != nil {
		m.logFailure(ServiceUpdateTask, req.TaskID, err)
		return TaskResponse{Error: errorBody(err)}, nil
	}

	fields := req.Patch.Fields()
	if fields == nil {
		fields = []string{}
	}
	m.publish(ServiceUpdateTask, t.ID, func() error {
		return events.TaskUpdatedV1.Publish(m.eventBus, events.TaskUpdatedEvent{
			TaskID:    t.ID,
			Status:    string(t.Status),
			Fields:    fields,
			UpdatedAt: t.UpdatedAt,
		}, nil)
	})

	m.logger.Info("Task updated", "task_id", t.ID, "fields", fields)
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.repo.DeleteTask(ctx, req.TaskID); err != nil {
		m.logFailure(ServiceDeleteTask, req.TaskID, err)
		return DeleteTaskResponse{Error: errorBody(err)}, nil
	}

	m.publish(ServiceDeleteTask, req.TaskID, func() error {
		return events.TaskDeletedV1.Publish(m.eventBus, events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			DeletedAt: time.Now().UTC(),
		}, nil)
	})

	m.logger.Info("Task deleted", "task_id", req.TaskID)
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, err := m.repo.ListTasks(ctx, req)
	if err != nil {
		m.logFailure(ServiceListTasks, "", err)
		return ListTasksResponse{Tasks: []domain.Task{}, Error: errorBody(err)}, nil
	}
	return ListTasksResponse{Tasks: page.Tasks, Count: page.Count, Limit: page.Limit}, nil
}

// publish emits an event best-effort; a failure is logged and never fails the operation.
func (m *TaskModule) publish(op, taskID string, emit func() error) {
	if m.eventBus == nil {
		return
	}
	if err := emit(); err != nil {
		m.logger.Warn("Failed to publish task event", "operation", op, "task_id", taskID, "error", err)
	}
}

func (m *TaskModule) logFailure(op, taskID string, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindStoreFailure {
		m.logger.Error("Task operation failed", "operation", op, "task_id", taskID, "kind", kind, "error", err)
		return
	}
	m.logger.Debug("Task operation rejected", "operation", op, "task_id", taskID, "kind", kind, "error", err)
}
