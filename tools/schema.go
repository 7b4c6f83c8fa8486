package tools

import "encoding/json"

// JSON Schemas for the tool arguments. Limits mirror the domain validation.
var (
	createTaskSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "task": {"type": "string", "minLength": 1, "maxLength": 500, "description": "Task description"},
    "time_to_complete": {"type": "integer", "minimum": 1, "maximum": 10080, "description": "Estimated time to complete, in minutes"},
    "deadline": {"type": "string", "format": "date-time", "description": "Deadline as an ISO 8601 date-time in the future"},
    "solutions": {"type": "array", "items": {"type": "string", "minLength": 1}, "maxItems": 10, "description": "Candidate solutions"},
    "status": {"type": "string", "enum": ["not started", "in progress", "done", "archived"], "default": "not started"}
  },
  "required": ["task"]
}`)

	taskIDSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string", "format": "uuid", "description": "Unique task identifier"}
  },
  "required": ["task_id"]
}`)

	updateTaskSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "task_id": {"type": "string", "format": "uuid", "description": "Unique task identifier"},
    "task": {"type": "string", "minLength": 1, "maxLength": 500, "description": "Task description"},
    "time_to_complete": {"type": "integer", "minimum": 1, "maximum": 10080, "description": "Estimated time to complete, in minutes"},
    "deadline": {"type": "string", "format": "date-time", "description": "Deadline as an ISO 8601 date-time in the future"},
    "solutions": {"type": "array", "items": {"type": "string", "minLength": 1}, "maxItems": 10, "description": "Replaces the existing solutions"},
    "status": {"type": "string", "enum": ["not started", "in progress", "done", "archived"]}
  },
  "required": ["task_id"]
}`)

	listTasksSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "status": {"type": "string", "enum": ["not started", "in progress", "done", "archived"], "description": "Only return tasks with this exact status"},
    "limit": {"type": "integer", "minimum": 1, "maximum": 100, "default": 50, "description": "Maximum number of tasks to return; there is no further page"}
  }
}`)
)
