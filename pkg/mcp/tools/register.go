package tools

import "github.com/mark3labs/mcp-go/server"

// RegisterAll registers every exploration tool on the server.
func RegisterAll(s *server.MCPServer, deps *Deps) {
	RegisterInfoTools(s, deps)
	RegisterSchemaTools(s, deps)
	RegisterRelationshipTools(s, deps)
	RegisterQueryTools(s, deps)
	RegisterStatsTools(s, deps)
}
