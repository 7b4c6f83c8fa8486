package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServer(t *testing.T) {
	s := NewMCPServer(newTestRegistry(t), "Task MCP Server", "1.0.0")
	ctx := context.Background()

	send := func(msg string) string {
		resp := s.HandleMessage(ctx, json.RawMessage(msg))
		data, err := json.Marshal(resp)
		require.NoError(t, err)
		return string(data)
	}

	hello := send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	assert.Contains(t, hello, "Task MCP Server")

	list := send(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	for _, name := range []string{"create_task", "get_task", "update_task", "delete_task", "list_tasks"} {
		assert.Contains(t, list, name)
	}

	created := send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"create_task","arguments":{"task":"buy milk"}}}`)
	assert.Contains(t, created, "Task created successfully with ID")

	failed := send(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_task","arguments":{"task_id":"nope"}}}`)
	assert.Contains(t, failed, `"isError":true`)
}
