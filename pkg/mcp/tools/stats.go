package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	sqlval "github.com/yugui923/db-connect-mcp/pkg/sql"
)

// RegisterStatsTools registers column statistics tools.
func RegisterStatsTools(s *server.MCPServer, deps *Deps) {
	registerAnalyzeColumnTool(s, deps)
}

func registerAnalyzeColumnTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"analyze_column",
		mcp.WithDescription(
			"Compute statistics for a single column. Numeric columns get mean, "+
				"standard deviation, min/max and percentiles where the dialect "+
				"supports them; text and other columns get a most-common-values "+
				"distribution. Always includes total, null and distinct counts. "+
				"Limitations (missing percentiles, truncated distributions, empty "+
				"tables) are reported as warnings in the result.",
		),
		mcp.WithString(
			"table",
			mcp.Required(),
			mcp.Description("Table containing the column"),
		),
		mcp.WithString(
			"column",
			mcp.Required(),
			mcp.Description("Column to analyze"),
		),
		mcp.WithString(
			"schema",
			mcp.Description("Schema containing the table (default: the connection's current schema)"),
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
		column, err := req.RequireString("column")
		if err != nil {
			return nil, err
		}
		table = strings.TrimSpace(table)
		column = strings.TrimSpace(column)
		if table == "" || column == "" {
			return NewErrorResult("invalid_parameters", "parameters 'table' and 'column' cannot be empty"), nil
		}
		schema := getOptionalString(req, "schema", "")
		if err := sqlval.ValidateIdentifiers(map[string]string{
			"schema": schema, "table": table, "column": column,
		}); err != nil {
			return toolError(err)
		}

		stats, err := deps.Analyzer.AnalyzeColumn(ctx, schema, table, column)
		if err != nil {
			return toolError(err)
		}
		return jsonResult(stats)
	})
}
