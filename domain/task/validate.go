package task

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input limits.
const (
	MaxTaskLength     = 500
	MinTimeToComplete = 1
	MaxTimeToComplete = 10080 // one week in minutes
	MaxSolutions      = 10

	// DefaultListLimit and MaxListLimit bound a single listing. Listing has
	// no continuation: a table larger than the limit is not fully returned.
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ValidateID checks that id is a task identifier.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "task_id", Reason: "task ID is required"}
	}
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "task_id", Reason: "task ID must be a valid UUID"}
	}
	return nil
}

// Normalize trims the task description.
func (d Draft) Normalize() Draft {
	d.Task = strings.TrimSpace(d.Task)
	return d
}

// Validate checks a normalized draft. Deadlines must lie after now.
func (d Draft) Validate(now time.Time) error {
	if d.Task == "" {
		return &ValidationError{Field: "task", Reason: "task description is required"}
	}
	return validateFields(Patch{
		Task:           Some(d.Task),
		Status:         d.Status,
		TimeToComplete: d.TimeToComplete,
		Deadline:       d.Deadline,
		Solutions:      d.Solutions,
	}, now)
}

// Normalize trims the task description if one is set.
func (p Patch) Normalize() Patch {
	if v, ok := p.Task.Get(); ok {
		p.Task = Some(strings.TrimSpace(v))
	}
	return p
}

// Validate checks the attributes set in a normalized patch.
func (p Patch) Validate(now time.Time) error {
	return validateFields(p, now)
}

func validateFields(p Patch, now time.Time) error {
	if v, ok := p.Task.Get(); ok {
		if v == "" {
			return &ValidationError{Field: "task", Reason: "task description cannot be empty"}
		}
		if utf8.RuneCountInString(v) > MaxTaskLength {
			return &ValidationError{Field: "task", Reason: fmt.Sprintf("task description too long (max %d characters)", MaxTaskLength)}
		}
	}
	if v, ok := p.Status.Get(); ok && !v.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", v)}
	}
	if v, ok := p.TimeToComplete.Get(); ok {
		if v < MinTimeToComplete || v > MaxTimeToComplete {
			return &ValidationError{Field: "time_to_complete", Reason: fmt.Sprintf("time to complete must be between %d and %d minutes", MinTimeToComplete, MaxTimeToComplete)}
		}
	}
	if v, ok := p.Deadline.Get(); ok {
		deadline, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return &ValidationError{Field: "deadline", Reason: "deadline must be a valid ISO 8601 date-time"}
		}
		if !deadline.After(now) {
			return &ValidationError{Field: "deadline", Reason: "deadline must be in the future"}
		}
	}
	if v, ok := p.Solutions.Get(); ok {
		if len(v) > MaxSolutions {
			return &ValidationError{Field: "solutions", Reason: fmt.Sprintf("too many solutions (max %d)", MaxSolutions)}
		}
		for _, s := range v {
			if strings.TrimSpace(s) == "" {
				return &ValidationError{Field: "solutions", Reason: "solution cannot be empty"}
			}
		}
	}
	return nil
}

// Normalize applies the default limit and validates the query.
func (q Query) Normalize() (Query, error) {
	if q.Limit == 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit < 1 || q.Limit > MaxListLimit {
		return q, &ValidationError{Field: "limit", Reason: fmt.Sprintf("limit must be between 1 and %d", MaxListLimit)}
	}
	if v, ok := q.Status.Get(); ok && v == "" {
		q.Status = None[Status]()
	}
	return q, nil
}

// Matches reports whether t passes the query's status filter. Comparison is exact.
func (q Query) Matches(t *Task) bool {
	v, ok := q.Status.Get()
	return !ok || t.Status == v
}
