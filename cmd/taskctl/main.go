// Command taskctl calls the task server's tools over NATS request-reply.
//
//	taskctl [-nats url] [-timeout d] <tool> [json-args]
//	taskctl tools
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/example/task-server/modules/task"
	"github.com/example/task-server/tools"
	"github.com/nats-io/nats.go"
)

const subjectPrefix = "services.task."

var errFailed = errors.New("tool call failed")

func main() {
	natsURL := flag.String("nats", nats.DefaultURL, "NATS server URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [flags] <tool> [json-args]\n       %s tools\n\nFlags:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args(), *natsURL, *timeout, os.Stdout); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(args []string, natsURL string, timeout time.Duration, out io.Writer) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing tool name")
	}

	if args[0] == "tools" {
		return listTools(out)
	}

	tool := args[0]
	subject, err := subjectFor(tool)
	if err != nil {
		return err
	}

	payload, err := requestBody(args[1:])
	if err != nil {
		return err
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("taskctl"),
		nats.Timeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msg, err := nc.RequestWithContext(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", tool, err)
	}
	return printReply(out, msg.Data)
}

// subjectFor maps a tool name to the NATS subject of the service behind it.
func subjectFor(tool string) (string, error) {
	t, ok := tools.NewRegistry(nil).Lookup(tool)
	if !ok {
		return "", fmt.Errorf("unknown tool %q (want one of %v)", tool, tools.ToolNames)
	}
	return subjectPrefix + t.Service, nil
}

func listTools(out io.Writer) error {
	for _, t := range tools.NewRegistry(nil).Tools() {
		if _, err := fmt.Fprintf(out, "%-12s %s\n", t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}

// requestBody joins the remaining arguments into one JSON object.
func requestBody(args []string) ([]byte, error) {
	if len(args) == 0 {
		return []byte("{}"), nil
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("expected one JSON argument, got %d", len(args))
	}

	raw := []byte(args[0])
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return raw, nil
}

// printReply pretty-prints a service reply and returns errFailed when the
// reply carries an error body.
func printReply(out io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("invalid reply: %w", err)
	}
	buf.WriteByte('\n')
	if _, err := buf.WriteTo(out); err != nil {
		return err
	}

	var reply struct {
		Error *task.ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		return fmt.Errorf("invalid reply: %w", err)
	}
	if reply.Error != nil {
		return errFailed
	}
	return nil
}
