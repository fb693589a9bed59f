// Package tools provides the MCP tool implementations for database
// exploration and profiling.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/dialect"
)

// RegisterInfoTools registers database-level metadata tools.
func RegisterInfoTools(s *server.MCPServer, deps *Deps) {
	registerDatabaseInfoTool(s, deps)
	registerListSchemasTool(s, deps)
	registerProfileDatabaseTool(s, deps)
}

func registerDatabaseInfoTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_database_info",
		mcp.WithDescription(
			"Get information about the connected database: dialect, server version, "+
				"current database name, current user, and the capabilities available "+
				"for this dialect (foreign keys, indexes, constraints, sampling and "+
				"statistics support). Call this first to learn what the other tools "+
				"can do against this connection.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := deps.Inspector.DatabaseInfo(ctx)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(map[string]any{
			"dialect":              info.Dialect,
			"version":              info.Version,
			"database_name":        info.DatabaseName,
			"username":             info.Username,
			"capabilities":         info.Capabilities,
			"supported_operations": dialect.SupportedOperations(info.Capabilities),
		})
	})
}

func registerListSchemasTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"list_schemas",
		mcp.WithDescription(
			"List schemas (databases for MySQL and ClickHouse) visible on this "+
				"connection. System schemas are excluded unless include_system is true; "+
				"each entry is flagged so system schemas remain distinguishable.",
		),
		mcp.WithBoolean(
			"include_system",
			mcp.Description("Include system schemas such as information_schema (default false)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		includeSystem := getOptionalBool(req, "include_system", false)

		schemas, err := deps.Inspector.ListSchemas(ctx, includeSystem)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(map[string]any{
			"schemas": schemas,
			"count":   len(schemas),
		})
	})
}

func registerProfileDatabaseTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"profile_database",
		mcp.WithDescription(
			"Produce a size-oriented overview of the whole database: per schema, the "+
				"table count and the largest tables by estimated row count. Row counts "+
				"come from catalog estimates, not full scans, so they may lag the true "+
				"counts. Useful as a first orientation step on an unfamiliar database.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profile, err := deps.Inspector.ProfileDatabase(ctx)
		if err != nil {
			return toolError(err)
		}
		deps.GetLogger().Debug("profiled database",
			zap.Int("schemas", len(profile.Schemas)))
		return jsonResult(profile)
	})
}
