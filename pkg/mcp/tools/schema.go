package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	sqlval "github.com/yugui923/db-connect-mcp/pkg/sql"
)

// RegisterSchemaTools registers table and column metadata tools.
func RegisterSchemaTools(s *server.MCPServer, deps *Deps) {
	registerListTablesTool(s, deps)
	registerDescribeTableTool(s, deps)
}

func registerListTablesTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"list_tables",
		mcp.WithDescription(
			"List tables and views in a schema with estimated row counts and "+
				"comments where the database provides them. Row counts are catalog "+
				"estimates and may be stale. Defaults to the dialect's current "+
				"schema when no schema is given.",
		),
		mcp.WithString(
			"schema",
			mcp.Description("Schema to list (default: the connection's current schema)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema := getOptionalString(req, "schema", "")
		if err := sqlval.ValidateIdentifier("schema", schema); err != nil {
			return toolError(err)
		}

		tables, err := deps.Inspector.ListTables(ctx, schema)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(map[string]any{
			"tables": tables,
			"count":  len(tables),
		})
	})
}

func registerDescribeTableTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"describe_table",
		mcp.WithDescription(
			"Describe the structure of a table: columns with types, nullability and "+
				"defaults, plus indexes, constraints and foreign keys where the "+
				"dialect supports them. Sections a dialect cannot provide come back "+
				"empty with an explanatory note rather than an error.",
		),
		mcp.WithString(
			"table",
			mcp.Required(),
			mcp.Description("Table name (e.g. 'orders')"),
		),
		mcp.WithString(
			"schema",
			mcp.Description("Schema containing the table (default: the connection's current schema)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := req.RequireString("table")
		if err != nil {
			return nil, err
		}
		table = strings.TrimSpace(table)
		if table == "" {
			return NewErrorResult("invalid_parameters", "parameter 'table' cannot be empty"), nil
		}
		schema := getOptionalString(req, "schema", "")
		if err := sqlval.ValidateIdentifiers(map[string]string{"schema": schema, "table": table}); err != nil {
			return toolError(err)
		}

		detail, err := deps.Inspector.DescribeTable(ctx, schema, table)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(detail)
	})
}
