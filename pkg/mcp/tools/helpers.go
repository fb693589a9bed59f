package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/analyzer"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/executor"
	"github.com/yugui923/db-connect-mcp/pkg/inspector"
)

// Deps holds everything the tool handlers need. Fields are set once at
// startup and read concurrently by handlers.
type Deps struct {
	Adapter   dialect.Adapter
	Inspector *inspector.Inspector
	Executor  *executor.Executor
	Analyzer  *analyzer.Analyzer
	Logger    *zap.Logger
}

// GetLogger returns the logger, or a no-op logger if none was provided.
func (d *Deps) GetLogger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// jsonResult marshals v as indented JSON into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// getOptionalString extracts an optional string argument, returning the
// default when absent or empty.
func getOptionalString(req mcp.CallToolRequest, key, defaultValue string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return defaultValue
	}
	if val, ok := args[key].(string); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return defaultValue
}

// getOptionalInt extracts an optional integer argument. JSON numbers arrive
// as float64.
func getOptionalInt(req mcp.CallToolRequest, key string, defaultValue int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return defaultValue
	}
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultValue
}

// getOptionalBool extracts an optional boolean argument.
func getOptionalBool(req mcp.CallToolRequest, key string, defaultValue bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return defaultValue
	}
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}
