package task

import (
	"cmp"
	"slices"
	"time"
)

// Status represents the state of a task.
type Status string

const (
	StatusNotStarted Status = "not started"
	StatusInProgress Status = "in progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// Statuses lists the recognised status values.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusDone, StatusArchived}

// Valid reports whether s is a recognised status.
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Task is the stored task record. Optional attributes are absent from the
// encoded record unless they were supplied.
type Task struct {
	ID             string             `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Task           string             `json:"task"`
	Status         Status             `json:"status"`
	TimeToComplete Optional[int]      `json:"time_to_complete,omitzero"`
	Deadline       Optional[string]   `json:"deadline,omitzero"`
	Solutions      Optional[[]string] `json:"solutions,omitzero"`
}

// Draft carries the caller-supplied attributes of a new task.
type Draft struct {
	Task           string             `json:"task"`
	Status         Optional[Status]   `json:"status,omitzero"`
	TimeToComplete Optional[int]      `json:"time_to_complete,omitzero"`
	Deadline       Optional[string]   `json:"deadline,omitzero"`
	Solutions      Optional[[]string] `json:"solutions,omitzero"`
}

// Patch carries the attributes an update replaces. Unset fields are left as they are.
type Patch struct {
	Task           Optional[string]   `json:"task,omitzero"`
	Status         Optional[Status]   `json:"status,omitzero"`
	TimeToComplete Optional[int]      `json:"time_to_complete,omitzero"`
	Deadline       Optional[string]   `json:"deadline,omitzero"`
	Solutions      Optional[[]string] `json:"solutions,omitzero"`
}

// Query selects tasks for listing.
type Query struct {
	Status Optional[Status] `json:"status,omitzero"`
	Limit  int              `json:"limit,omitempty"`
}

// Page is one bounded listing result. There is no continuation token.
type Page struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
	Limit int    `json:"limit"`
}

// New builds a task from a draft. CreatedAt and UpdatedAt are both set to now.
func New(id string, d Draft, now time.Time) *Task {
	return &Task{
		ID:             id,
		CreatedAt:      now,
		UpdatedAt:      now,
		Task:           d.Task,
		Status:         d.Status.OrElse(StatusNotStarted),
		TimeToComplete: d.TimeToComplete,
		Deadline:       d.Deadline,
		Solutions:      cloneSolutions(d.Solutions),
	}
}

// Apply replaces every attribute set in p and stamps UpdatedAt.
func (t *Task) Apply(p Patch, at time.Time) {
	if v, ok := p.Task.Get(); ok {
		t.Task = v
	}
	if v, ok := p.Status.Get(); ok {
		t.Status = v
	}
	if p.TimeToComplete.IsSet() {
		t.TimeToComplete = p.TimeToComplete
	}
	if p.Deadline.IsSet() {
		t.Deadline = p.Deadline
	}
	if p.Solutions.IsSet() {
		t.Solutions = cloneSolutions(p.Solutions)
	}
	t.UpdatedAt = at
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	c.Solutions = cloneSolutions(t.Solutions)
	return &c
}

// IsEmpty reports whether the patch changes no content attribute.
func (p Patch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the JSON names of the attributes set in p.
func (p Patch) Fields() []string {
	var fields []string
	if p.Task.IsSet() {
		fields = append(fields, "task")
	}
	if p.Status.IsSet() {
		fields = append(fields, "status")
	}
	if p.TimeToComplete.IsSet() {
		fields = append(fields, "time_to_complete")
	}
	if p.Deadline.IsSet() {
		fields = append(fields, "deadline")
	}
	if p.Solutions.IsSet() {
		fields = append(fields, "solutions")
	}
	return fields
}

// SortByCreation orders tasks by CreatedAt, then ID.
func SortByCreation(tasks []Task) {
	slices.SortFunc(tasks, func(a, b Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func cloneSolutions(o Optional[[]string]) Optional[[]string] {
	v, ok := o.Get()
	if !ok {
		return o
	}
	if v == nil {
		v = []string{}
	}
	return Some(slices.Clone(v))
}
