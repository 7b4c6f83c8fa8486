package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/task-server/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

const (
	// MaxEntries is the size of the activity feed.
	MaxEntries = 200
	// DefaultRecent is the number of entries returned when no limit is given.
	DefaultRecent = 20

	ServiceRecent = "recent"
)

// Entry is one logged task event.
type Entry struct {
	TaskID    string    `json:"task_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RecentRequest asks for the newest entries.
type RecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RecentResponse holds entries newest first.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
}

// ActivityModule is a driven adapter that subscribes to task events and keeps
// a bounded feed of what happened.
type ActivityModule struct {
	entries []Entry
	mu      sync.RWMutex
	now     func() time.Time
	logger  types.Logger
}

var (
	_ mono.Module                = (*ActivityModule)(nil)
	_ mono.EventConsumerModule   = (*ActivityModule)(nil)
	_ mono.ServiceProviderModule = (*ActivityModule)(nil)
)

func NewModule(logger types.Logger) *ActivityModule {
	return &ActivityModule{
		entries: make([]Entry, 0, MaxEntries),
		now:     time.Now,
		logger:  logger,
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "TaskCreated, TaskUpdated, TaskDeleted")
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRecent, json.Unmarshal, json.Marshal, m.handleRecent,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRecent, err)
	}
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_created", fmt.Sprintf("Task %q created with status %q", event.Task, event.Status))
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	changed := "no fields"
	if len(event.Fields) > 0 {
		changed = strings.Join(event.Fields, ", ")
	}
	m.record(event.TaskID, "task_updated", fmt.Sprintf("Task %s updated (%s), status %q", event.TaskID, changed, event.Status))
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_deleted", fmt.Sprintf("Task %s deleted", event.TaskID))
	return nil
}

func (m *ActivityModule) handleRecent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	entries := m.Recent(req.Limit)
	return RecentResponse{Entries: entries, Count: len(entries)}, nil
}

func (m *ActivityModule) record(taskID, entryType, message string) {
	m.logger.Debug("Task activity", "task_id", taskID, "type", entryType)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == MaxEntries {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:MaxEntries-1]
	}
	m.entries = append(m.entries, Entry{
		TaskID:    taskID,
		Type:      entryType,
		Message:   message,
		Timestamp: m.now().UTC(),
	})
}

// Recent returns up to limit entries, newest first. A limit outside
// 1..MaxEntries falls back to DefaultRecent or MaxEntries.
func (m *ActivityModule) Recent(limit int) []Entry {
	if limit <= 0 {
		limit = DefaultRecent
	}
	limit = min(limit, MaxEntries)

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.entries))
	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= len(m.entries)-n; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Activity module started - listening for task events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped")
	return nil
}
