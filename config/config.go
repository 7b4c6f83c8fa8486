// Package config loads the task server configuration from the environment
// and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	StoreJetStream = "jetstream"
	StoreRedis     = "redis"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

// StoreBackends lists the accepted TASK_STORE values.
var StoreBackends = []string{StoreJetStream, StoreRedis, StoreSQLite, StorePostgres, StoreMemory}

type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	NATS     NATSConfig     `yaml:"nats"`
	Redis    RedisConfig    `yaml:"redis"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Log      LogConfig      `yaml:"log"`
	MCP      MCPConfig      `yaml:"mcp"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend" env:"TASK_STORE" env-default:"jetstream"`
	TableName string `yaml:"table_name" env:"TASK_TABLE_NAME" env-default:"TaskTable"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":3000"`
	CORSOrigins     string        `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
}

type NATSConfig struct {
	Port         int    `yaml:"port" env:"NATS_PORT" env-default:"4222"`
	JetStreamDir string `yaml:"jetstream_dir" env:"JETSTREAM_DIR" env-default:"/tmp/task-server"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"tasks.db"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type MCPConfig struct {
	Name    string `yaml:"name" env:"MCP_SERVER_NAME" env-default:"Task MCP Server"`
	Version string `yaml:"version" env:"MCP_SERVER_VERSION" env-default:"1.0.0"`
}

// Load reads the file named by CONFIG_PATH if set, then the environment,
// and validates the result.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config not read from %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config not read from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if !slices.Contains(StoreBackends, c.Store.Backend) {
		return fmt.Errorf("unknown TASK_STORE %q (want one of %v)", c.Store.Backend, StoreBackends)
	}
	if c.Store.TableName == "" {
		return fmt.Errorf("TASK_TABLE_NAME must not be empty")
	}
	if c.Store.Backend == StorePostgres && c.Postgres.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the %s store", StorePostgres)
	}
	if c.Log.Level != "info" && c.Log.Level != "error" {
		return fmt.Errorf("unknown LOG_LEVEL %q (want info or error)", c.Log.Level)
	}
	return nil
}

// Quiet reports whether only errors should be logged.
func (c Config) Quiet() bool {
	return c.Log.Level == "error"
}

// Usage describes every environment variable the server reads.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
