package models

// DatabaseInfo summarizes the connected database and what the dialect
// supports.
type DatabaseInfo struct {
	Dialect      Dialect      `json:"dialect"`
	Version      string       `json:"version"`
	DatabaseName string       `json:"database_name"`
	Username     string       `json:"username,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

// SchemaInfo is one entry from list_schemas.
type SchemaInfo struct {
	Name     string `json:"name"`
	IsSystem bool   `json:"is_system"`
}

// TableInfo is one entry from list_tables.
type TableInfo struct {
	Schema    string  `json:"schema"`
	Name      string  `json:"name"`
	Type      string  `json:"type"` // "table" or "view"
	RowCount  *int64  `json:"row_count,omitempty"`
	SizeBytes *int64  `json:"size_bytes,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// ColumnInfo describes a single column of a table.
type ColumnInfo struct {
	Name            string  `json:"name"`
	DataType        string  `json:"data_type"`
	IsNullable      bool    `json:"is_nullable"`
	DefaultValue    *string `json:"default_value,omitempty"`
	OrdinalPosition int     `json:"ordinal_position"`
	Comment         *string `json:"comment,omitempty"`
}

// IndexInfo describes an index on a table.
type IndexInfo struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	IsUnique bool     `json:"is_unique"`
	Type     string   `json:"type,omitempty"`
}

// ConstraintInfo describes a table constraint.
type ConstraintInfo struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"` // PRIMARY KEY, UNIQUE, CHECK, FOREIGN KEY
	Columns []string `json:"columns"`
}

// ForeignKeyInfo describes one column of a foreign key relationship.
type ForeignKeyInfo struct {
	ConstraintName   string `json:"constraint_name"`
	Schema           string `json:"schema"`
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedSchema string `json:"referenced_schema"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// TableDetail is the full description of a table returned by describe_table.
type TableDetail struct {
	Schema      string           `json:"schema"`
	Name        string           `json:"name"`
	Columns     []ColumnInfo     `json:"columns"`
	Indexes     []IndexInfo      `json:"indexes"`
	Constraints []ConstraintInfo `json:"constraints"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys"`
	RowCount    *int64           `json:"row_count,omitempty"`
	SizeBytes   *int64           `json:"size_bytes,omitempty"`
	Comment     *string          `json:"comment,omitempty"`
	Notes       []string         `json:"notes,omitempty"`
}

// SchemaProfile aggregates table counts and sizes for one schema.
type SchemaProfile struct {
	Schema     string `json:"schema"`
	TableCount int64  `json:"table_count"`
	TotalBytes int64  `json:"total_bytes"`
}

// TableProfileEntry is one table in the largest-tables listing.
type TableProfileEntry struct {
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	SizeBytes int64  `json:"size_bytes"`
	RowCount  int64  `json:"row_count"`
}

// DatabaseProfile is the result of profile_database.
type DatabaseProfile struct {
	Dialect       Dialect             `json:"dialect"`
	DatabaseName  string              `json:"database_name"`
	Schemas       []SchemaProfile     `json:"schemas"`
	LargestTables []TableProfileEntry `json:"largest_tables"`
	TotalTables   int64               `json:"total_tables"`
	TotalBytes    int64               `json:"total_bytes"`
}
