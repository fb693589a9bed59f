package dialect

import "github.com/yugui923/db-connect-mcp/pkg/models"

// Operation names one of the exploration operations a connection can serve.
type Operation string

const (
	OpGetDatabaseInfo       Operation = "get_database_info"
	OpListSchemas           Operation = "list_schemas"
	OpListTables            Operation = "list_tables"
	OpDescribeTable         Operation = "describe_table"
	OpAnalyzeColumn         Operation = "analyze_column"
	OpSampleData            Operation = "sample_data"
	OpExecuteQuery          Operation = "execute_query"
	OpGetTableRelationships Operation = "get_table_relationships"
	OpProfileDatabase       Operation = "profile_database"
	OpExplainQuery          Operation = "explain_query"
)

// SupportedOperations reports which operations a dialect with the given
// capabilities can serve with meaningful results. Operations missing from
// the result still exist as tools; relationship listings just come back
// empty with a note.
func SupportedOperations(caps models.Capabilities) []Operation {
	ops := []Operation{
		OpGetDatabaseInfo,
		OpListSchemas,
		OpListTables,
		OpDescribeTable,
		OpAnalyzeColumn,
		OpSampleData,
		OpExecuteQuery,
	}
	if caps.ForeignKeys {
		ops = append(ops, OpGetTableRelationships)
	}
	ops = append(ops, OpProfileDatabase, OpExplainQuery)
	return ops
}
