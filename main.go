package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/example/task-server/config"
	"github.com/example/task-server/modules/activity"
	"github.com/example/task-server/modules/api"
	"github.com/example/task-server/modules/task"
	"github.com/example/task-server/tools"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/middleware/accesslog"
	"github.com/go-monolith/mono/middleware/requestid"
	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s\n\n%s\n", os.Args[0], config.Usage())
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("=== Task Server - Fiber + MCP + JetStream KV Store ===")

	level := mono.LogLevelInfo
	if cfg.Quiet() {
		level = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		mono.WithLogLevel(level),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithJetStreamStorageDir(cfg.NATS.JetStreamDir),
		mono.WithNATSPort(cfg.NATS.Port),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if cfg.Store.Backend == config.StoreJetStream {
		kvStore, err := kvjetstream.New(kvjetstream.Config{
			Buckets: []kvjetstream.BucketConfig{
				{
					Name:        cfg.Store.TableName,
					Description: "Task records keyed by task id",
					Storage:     kvjetstream.FileStorage,
				},
			},
		})
		if err != nil {
			log.Fatalf("Failed to create kv plugin: %v", err)
		}
		// The framework calls SetPlugin("kv", kvStore) on the task module.
		if err := app.RegisterPlugin(kvStore, "kv"); err != nil {
			log.Fatalf("Failed to register kv plugin: %v", err)
		}
	}

	// Middleware must be registered before regular modules.
	requestIDMiddleware, err := requestid.New(
		requestid.WithHeaderName("X-Request-ID"),
	)
	if err != nil {
		log.Fatalf("Failed to create requestid middleware: %v", err)
	}
	if err := app.Register(requestIDMiddleware); err != nil {
		log.Fatalf("Failed to register requestid middleware: %v", err)
	}

	accessLogMiddleware, err := accesslog.New(
		accesslog.WithOutput(os.Stdout),
		accesslog.WithFormat(accesslog.FormatJSON),
		accesslog.WithFields([]accesslog.Field{
			accesslog.FieldTimestamp,
			accesslog.FieldRequestID,
			accesslog.FieldModule,
			accesslog.FieldService,
			accesslog.FieldDurationMS,
			accesslog.FieldStatus,
		}),
	)
	if err != nil {
		log.Fatalf("Failed to create accesslog middleware: %v", err)
	}
	if err := app.Register(accessLogMiddleware); err != nil {
		log.Fatalf("Failed to register accesslog middleware: %v", err)
	}

	// Order: independent modules first, then modules with dependencies
	// - activity: event consumer (subscribes to task events)
	// - task: core domain (store owner, emits events, serves tools over NATS)
	// - api: driving adapter (Fiber HTTP + MCP, depends on task and activity)
	logger := app.Logger()
	if err := app.Register(activity.NewModule(logger)); err != nil {
		log.Fatalf("Failed to register activity module: %v", err)
	}
	if err := app.Register(task.NewModule(cfg, logger)); err != nil {
		log.Fatalf("Failed to register task module: %v", err)
	}
	if err := app.Register(api.NewModule(cfg, logger)); err != nil {
		log.Fatalf("Failed to register api module: %v", err)
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber")
	log.Printf("  - Storage Backend: %s (table %s)", cfg.Store.Backend, cfg.Store.TableName)
	log.Printf("  - NATS Port: %d", cfg.NATS.Port)
	log.Printf("  - MCP Server: %s %s", cfg.MCP.Name, cfg.MCP.Version)
	log.Println("")
	log.Printf("REST API Endpoints (%s):", cfg.Server.Addr)
	log.Println("  POST   /tasks              - Create a task")
	log.Println("  GET    /tasks              - List tasks (?status=&limit=)")
	log.Println("  GET    /tasks/:id          - Get a task by ID")
	log.Println("  PUT    /tasks/:id          - Update a task")
	log.Println("  DELETE /tasks/:id          - Delete a task")
	log.Println("  GET    /activity           - Recent task events")
	log.Println("  GET    /tools              - Tool manifest")
	log.Println("  POST   /tools/:name        - Invoke a tool")
	log.Println("  POST   /mcp                - Model Context Protocol endpoint")
	log.Println("  GET    /health             - Health check")
	log.Println("")
	log.Println("NATS Services (taskctl <tool>):")
	for _, t := range tools.NewRegistry(nil).Tools() {
		log.Printf("  services.task.%-12s - %s", t.Service, t.Name)
	}
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
