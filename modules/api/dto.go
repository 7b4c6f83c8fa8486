package api

import (
	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/modules/activity"
	"github.com/example/task-server/tools"
)

// MutationResponse answers a create or update.
type MutationResponse struct {
	TaskID  string       `json:"task_id"`
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

// DeleteResponse answers a delete.
type DeleteResponse struct {
	TaskID  string `json:"task_id"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

// ListTasksResponse is the HTTP response for listing tasks.
type ListTasksResponse struct {
	Tasks  []domain.Task `json:"tasks"`
	Count  int           `json:"count"`
	Limit  int           `json:"limit"`
	Filter any           `json:"filter"`
}

// ActivityResponse lists recent task events, newest first.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Count   int              `json:"count"`
}

// ToolsResponse is the tool manifest.
type ToolsResponse struct {
	Tools []tools.Tool `json:"tools"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
