package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	sqlval "github.com/yugui923/db-connect-mcp/pkg/sql"
)

// RegisterRelationshipTools registers foreign key exploration tools.
func RegisterRelationshipTools(s *server.MCPServer, deps *Deps) {
	registerTableRelationshipsTool(s, deps)
}

func registerTableRelationshipsTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_table_relationships",
		mcp.WithDescription(
			"List all foreign key relationships in a schema: each entry names the "+
				"referencing column and the referenced table and column. Use this to "+
				"map how tables join. Dialects without foreign key support "+
				"(ClickHouse) return an empty list with an explanatory note.",
		),
		mcp.WithString(
			"schema",
			mcp.Description("Schema to inspect (default: the connection's current schema)"),
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

		fks, notes, err := deps.Inspector.TableRelationships(ctx, schema)
		if err != nil {
			return toolError(err)
		}
		result := map[string]any{
			"relationships": fks,
			"count":         len(fks),
		}
		if len(notes) > 0 {
			result["notes"] = notes
		}
		return jsonResult(result)
	})
}
