package tools

import (
	"encoding/json"
	"time"

	domain "github.com/example/task-server/domain/task"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// outcome is the JSON document a tool call renders as text.
type outcome struct {
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Kind      domain.Kind   `json:"kind,omitempty"`
	TaskID    string        `json:"task_id,omitempty"`
	CreatedID string        `json:"taskId,omitempty"`
	Message   string        `json:"message,omitempty"`
	Task      *domain.Task  `json:"task,omitempty"`
	Filter    any           `json:"filter,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Tasks     []domain.Task `json:"tasks,omitzero"`
	Count     *int          `json:"count,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
}

// Result is the rendered outcome of one tool call.
type Result struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

func failure(err error, taskID string, now time.Time) outcome {
	return outcome{
		Success:   false,
		Error:     err.Error(),
		Kind:      domain.KindOf(err),
		TaskID:    taskID,
		Timestamp: now.UTC().Format(timestampLayout),
	}
}

func (o outcome) render() Result {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		data = []byte(`{"success": false, "error": "failed to render tool result"}`)
		return Result{Text: string(data), IsError: true}
	}
	return Result{Text: string(data), IsError: !o.Success}
}
