package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/executor"
	"github.com/yugui923/db-connect-mcp/pkg/logging"
	sqlval "github.com/yugui923/db-connect-mcp/pkg/sql"
)

// RegisterQueryTools registers SQL execution and sampling tools.
func RegisterQueryTools(s *server.MCPServer, deps *Deps) {
	registerExecuteQueryTool(s, deps)
	registerSampleDataTool(s, deps)
	registerExplainQueryTool(s, deps)
}

func registerExecuteQueryTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"execute_query",
		mcp.WithDescription(
			"Execute a read-only SQL query. Only single SELECT or WITH statements "+
				"are accepted; anything that could modify data or schema is rejected "+
				"before reaching the database. Results without an explicit LIMIT are "+
				"capped and flagged as truncated when rows were cut off.",
		),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("SQL to execute. Must be a single SELECT or WITH statement."),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Maximum rows to return when the query has no LIMIT (default 100, max 10000)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return nil, err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			return NewErrorResult("invalid_parameters", "parameter 'query' cannot be empty"), nil
		}
		limit := getOptionalInt(req, "limit", executor.DefaultLimit)

		result, err := deps.Executor.Execute(ctx, query, limit)
		if err != nil {
			deps.GetLogger().Debug("query failed",
				zap.String("query", logging.SanitizeQuery(query)))
			return toolError(err)
		}
		return jsonResult(result)
	})
}

func registerSampleDataTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"sample_data",
		mcp.WithDescription(
			"Fetch a small sample of rows from a table to inspect actual values. "+
				"Uses the most efficient sampling the dialect offers (ORDER BY "+
				"RAND() on MySQL, SAMPLE on ClickHouse, plain LIMIT on PostgreSQL); "+
				"the response reports which method was used and whether rows were "+
				"randomized.",
		),
		mcp.WithString(
			"table",
			mcp.Required(),
			mcp.Description("Table to sample"),
		),
		mcp.WithString(
			"schema",
			mcp.Description("Schema containing the table (default: the connection's current schema)"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Number of rows to sample (default 100, max 1000)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
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
		limit := getOptionalInt(req, "limit", executor.DefaultLimit)

		result, err := deps.Executor.Sample(ctx, schema, table, limit)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(result)
	})
}

func registerExplainQueryTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"explain_query",
		mcp.WithDescription(
			"Show the execution plan for a read-only query without running it. The "+
				"query passes the same safety validation as execute_query. Plan "+
				"format depends on the dialect: JSON for PostgreSQL and MySQL, text "+
				"for ClickHouse.",
		),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("SQL to explain. Must be a single SELECT or WITH statement."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return nil, err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			return NewErrorResult("invalid_parameters", "parameter 'query' cannot be empty"), nil
		}

		result, err := deps.Executor.Explain(ctx, query)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(result)
	})
}
