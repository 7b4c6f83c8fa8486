package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.TableName != "TaskTable" {
		t.Errorf("TableName = %q, want %q", cfg.Store.TableName, "TaskTable")
	}
	if cfg.Store.Backend != StoreJetStream {
		t.Errorf("Backend = %q, want %q", cfg.Store.Backend, StoreJetStream)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, ":3000")
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout)
	}
	if cfg.MCP.Name != "Task MCP Server" || cfg.MCP.Version != "1.0.0" {
		t.Errorf("MCP = %+v, want Task MCP Server 1.0.0", cfg.MCP)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("TASK_TABLE_NAME", "Tasks")
	t.Setenv("TASK_STORE", StoreRedis)
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("NATS_PORT", "4333")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.TableName != "Tasks" {
		t.Errorf("TableName = %q, want %q", cfg.Store.TableName, "Tasks")
	}
	if cfg.Store.Backend != StoreRedis {
		t.Errorf("Backend = %q, want %q", cfg.Store.Backend, StoreRedis)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("Redis.Addr = %q, want %q", cfg.Redis.Addr, "redis:6380")
	}
	if cfg.NATS.Port != 4333 {
		t.Errorf("NATS.Port = %d, want 4333", cfg.NATS.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "store:\n  backend: sqlite\n  table_name: FileTasks\nsqlite:\n  path: /data/tasks.db\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Backend != StoreSQLite {
		t.Errorf("Backend = %q, want %q", cfg.Store.Backend, StoreSQLite)
	}
	if cfg.Store.TableName != "FileTasks" {
		t.Errorf("TableName = %q, want %q", cfg.Store.TableName, "FileTasks")
	}
	if cfg.SQLite.Path != "/data/tasks.db" {
		t.Errorf("SQLite.Path = %q, want %q", cfg.SQLite.Path, "/data/tasks.db")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Store: StoreConfig{Backend: StoreMemory, TableName: "TaskTable"},
		Log:   LogConfig{Level: "info"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "dynamodb" }, true},
		{"empty table", func(c *Config) { c.Store.TableName = "" }, true},
		{"postgres without url", func(c *Config) { c.Store.Backend = StorePostgres }, true},
		{"postgres with url", func(c *Config) {
			c.Store.Backend = StorePostgres
			c.Postgres.URL = "postgres://localhost/tasks"
		}, false},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
