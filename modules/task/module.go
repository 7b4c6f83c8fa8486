package task

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/example/task-server/config"
	domain "github.com/example/task-server/domain/task"
	"github.com/example/task-server/events"
	"github.com/example/task-server/store/kvstore"
	"github.com/example/task-server/store/memstore"
	"github.com/example/task-server/store/pgstore"
	"github.com/example/task-server/store/redisstore"
	"github.com/example/task-server/store/sqlstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
)

// TaskModule owns the task store and serves the task operations.
type TaskModule struct {
	cfg      config.Config
	kv       *kvjetstream.PluginModule
	repo     *Repository
	store    domain.Store
	backend  string
	eventBus mono.EventBus
	logger   types.Logger
}

var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
	_ mono.UsePluginModule       = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
)

// NewModule creates a TaskModule that opens the configured store on Start.
func NewModule(cfg config.Config, logger types.Logger) *TaskModule {
	return &TaskModule{
		cfg:     cfg,
		backend: cfg.Store.Backend,
		logger:  logger,
	}
}

// NewModuleWithStore creates a TaskModule over an already open store.
// This constructor enables dependency injection for testing.
func NewModuleWithStore(store domain.Store, logger types.Logger, opts ...RepositoryOption) *TaskModule {
	return &TaskModule{
		store:   store,
		repo:    NewRepository(store, opts...),
		backend: "injected",
		logger:  logger,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias == "kv" {
		m.kv = plugin.(*kvjetstream.PluginModule)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	m.logger.Info("Registered task services", "services", ServiceNames)
	return nil
}

func (m *TaskModule) Start(ctx context.Context) error {
	if m.repo == nil {
		store, err := m.openStore(ctx)
		if err != nil {
			return err
		}
		m.store = store
		m.repo = NewRepository(store)
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, task events will not be published")
	}
	m.logger.Info("Task module started", "backend", m.backend, "table", m.cfg.Store.TableName)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if closer, ok := m.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			m.logger.Error("Failed to close task store", "error", err)
			return err
		}
	}
	m.logger.Info("Task module stopped")
	return nil
}

// Health pings the store when the backend supports it.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "task store not initialized",
		}
	}

	if pinger, ok := m.store.(domain.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			return mono.HealthStatus{
				Healthy: false,
				Message: fmt.Sprintf("task store ping failed: %v", err),
				Details: map[string]any{"backend": m.backend},
			}
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"backend": m.backend,
			"table":   m.cfg.Store.TableName,
		},
	}
}

// Repository returns the task facade. It is nil before Start.
func (m *TaskModule) Repository() *Repository {
	return m.repo
}

func (m *TaskModule) openStore(ctx context.Context) (domain.Store, error) {
	table := m.cfg.Store.TableName

	switch m.backend {
	case config.StoreMemory:
		return memstore.New(), nil

	case config.StoreJetStream:
		if m.kv == nil {
			return nil, fmt.Errorf("required plugin 'kv' not registered")
		}
		bucket := m.kv.Bucket(table)
		if bucket == nil {
			return nil, fmt.Errorf("bucket '%s' not found", table)
		}
		return kvstore.New(bucket), nil

	case config.StoreRedis:
		return redisstore.Open(ctx, redisstore.Config{
			Addr:     m.cfg.Redis.Addr,
			Password: m.cfg.Redis.Password,
			DB:       m.cfg.Redis.DB,
			PoolSize: m.cfg.Redis.PoolSize,
			Table:    table,
		})

	case config.StoreSQLite:
		return sqlstore.Open(m.cfg.SQLite.Path, table)

	case config.StorePostgres:
		return pgstore.Open(ctx, m.cfg.Postgres.URL, table)

	default:
		return nil, fmt.Errorf("unknown task store backend %q", m.backend)
	}
}
