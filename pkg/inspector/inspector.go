// Package inspector answers metadata questions about the connected
// database: schemas, tables, columns, indexes, constraints, and foreign
// keys, plus whole-database profiling.
package inspector

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yugui923/db-connect-mcp/pkg/apperrors"
	"github.com/yugui923/db-connect-mcp/pkg/database"
	"github.com/yugui923/db-connect-mcp/pkg/dialect"
	"github.com/yugui923/db-connect-mcp/pkg/models"
)

// ProfileTableCount is how many of the largest tables a database profile
// includes.
const ProfileTableCount = 10

// Inspector reads catalog metadata through the dialect adapter.
type Inspector struct {
	querier database.Querier
	adapter dialect.Adapter
	logger  *zap.Logger
}

func New(querier database.Querier, adapter dialect.Adapter, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{querier: querier, adapter: adapter, logger: logger}
}

// DatabaseInfo reports the server version, current database, and what the
// dialect supports.
func (i *Inspector) DatabaseInfo(ctx context.Context) (*models.DatabaseInfo, error) {
	q := i.adapter.DatabaseInfoQuery()
	rows, err := i.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}

	info := &models.DatabaseInfo{
		Dialect:      i.adapter.Dialect(),
		Capabilities: i.adapter.Capabilities(),
	}
	if rows.RowCount() > 0 {
		row := rows.Values[0]
		info.Version = models.AsString(row[0])
		info.DatabaseName = models.AsString(row[1])
		info.Username = models.AsString(row[2])
	}
	return info, nil
}

// ListSchemas lists schemas. System schemas are excluded unless requested
// and always flagged.
func (i *Inspector) ListSchemas(ctx context.Context, includeSystem bool) ([]models.SchemaInfo, error) {
	q := i.adapter.SchemaQuery()
	rows, err := i.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}

	system := i.adapter.SystemSchemas()
	schemas := make([]models.SchemaInfo, 0, rows.RowCount())
	for _, row := range rows.Values {
		name := models.AsString(row[0])
		isSystem := system[name]
		if isSystem && !includeSystem {
			continue
		}
		schemas = append(schemas, models.SchemaInfo{Name: name, IsSystem: isSystem})
	}
	return schemas, nil
}

// ListTables lists tables and views in a schema, enriched with approximate
// row counts where the catalog provides them.
func (i *Inspector) ListTables(ctx context.Context, schema string) ([]models.TableInfo, error) {
	schema = i.resolveSchema(schema)

	q := i.adapter.TableQuery(schema)
	rows, err := i.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}

	tables := make([]models.TableInfo, 0, rows.RowCount())
	for _, row := range rows.Values {
		tables = append(tables, models.TableInfo{
			Schema: models.AsString(row[0]),
			Name:   models.AsString(row[1]),
			Type:   models.AsString(row[2]),
		})
	}

	for idx := range tables {
		if tables[idx].Type != "table" {
			continue
		}
		eq := i.adapter.EnrichTableQuery(tables[idx].Schema, tables[idx].Name)
		erows, err := i.querier.Query(ctx, eq.SQL, eq.Args...)
		if err != nil {
			// Enrichment is best effort; the listing itself already
			// succeeded.
			i.logger.Debug("table enrichment failed",
				zap.String("table", tables[idx].Name), zap.Error(err))
			continue
		}
		if erows.RowCount() > 0 {
			count := models.AsInt64(erows.Values[0][0])
			tables[idx].RowCount = &count
			tables[idx].SizeBytes = models.AsInt64Ptr(erows.Values[0][1])
			tables[idx].Comment = models.AsStringPtr(erows.Values[0][2])
		}
	}
	return tables, nil
}

// DescribeTable returns the full structure of one table. Sections the
// dialect cannot describe come back empty with an explanatory note.
func (i *Inspector) DescribeTable(ctx context.Context, schema, table string) (*models.TableDetail, error) {
	schema = i.resolveSchema(schema)

	detail := &models.TableDetail{
		Schema:      schema,
		Name:        table,
		Columns:     []models.ColumnInfo{},
		Indexes:     []models.IndexInfo{},
		Constraints: []models.ConstraintInfo{},
		ForeignKeys: []models.ForeignKeyInfo{},
	}

	cq := i.adapter.ColumnQuery(schema, table)
	crows, err := i.querier.Query(ctx, cq.SQL, cq.Args...)
	if err != nil {
		return nil, err
	}
	if crows.RowCount() == 0 {
		return nil, fmt.Errorf("%w: table %s.%s", apperrors.ErrNotFound, schema, table)
	}
	for _, row := range crows.Values {
		detail.Columns = append(detail.Columns, models.ColumnInfo{
			Name:            models.AsString(row[0]),
			DataType:        models.AsString(row[1]),
			IsNullable:      models.AsBool(row[2]),
			DefaultValue:    models.AsStringPtr(row[3]),
			OrdinalPosition: int(models.AsInt64(row[4])),
			Comment:         models.AsStringPtr(row[5]),
		})
	}

	caps := i.adapter.Capabilities()

	if iq := i.adapter.IndexQuery(schema, table); caps.Indexes && iq.SQL != "" {
		irows, err := i.querier.Query(ctx, iq.SQL, iq.Args...)
		if err != nil {
			return nil, err
		}
		for _, row := range irows.Values {
			detail.Indexes = append(detail.Indexes, models.IndexInfo{
				Name:     models.AsString(row[0]),
				Columns:  splitColumns(models.AsString(row[1])),
				IsUnique: models.AsBool(row[2]),
				Type:     models.AsString(row[3]),
			})
		}
	} else {
		detail.Notes = append(detail.Notes, i.unsupportedNote("indexes"))
	}

	if cnq := i.adapter.ConstraintQuery(schema, table); caps.Constraints && cnq.SQL != "" {
		cnrows, err := i.querier.Query(ctx, cnq.SQL, cnq.Args...)
		if err != nil {
			return nil, err
		}
		for _, row := range cnrows.Values {
			detail.Constraints = append(detail.Constraints, models.ConstraintInfo{
				Name:    models.AsString(row[0]),
				Type:    models.AsString(row[1]),
				Columns: splitColumns(models.AsString(row[2])),
			})
		}
	} else {
		detail.Notes = append(detail.Notes, i.unsupportedNote("constraints"))
	}

	if fkq := i.adapter.ForeignKeyQuery(schema, table); caps.ForeignKeys && fkq.SQL != "" {
		fks, err := i.foreignKeys(ctx, fkq)
		if err != nil {
			return nil, err
		}
		detail.ForeignKeys = fks
	} else {
		detail.Notes = append(detail.Notes, i.unsupportedNote("foreign keys"))
	}

	if eq := i.adapter.EnrichTableQuery(schema, table); eq.SQL != "" {
		erows, err := i.querier.Query(ctx, eq.SQL, eq.Args...)
		if err == nil && erows.RowCount() > 0 {
			row := erows.Values[0]
			count := models.AsInt64(row[0])
			size := models.AsInt64(row[1])
			detail.RowCount = &count
			detail.SizeBytes = &size
			detail.Comment = models.AsStringPtr(row[2])
		}
	}

	return detail, nil
}

// TableRelationships returns the foreign key graph of a schema. Dialects
// without foreign keys yield an empty graph and a note rather than an
// error.
func (i *Inspector) TableRelationships(ctx context.Context, schema string) ([]models.ForeignKeyInfo, []string, error) {
	schema = i.resolveSchema(schema)

	caps := i.adapter.Capabilities()
	fkq := i.adapter.ForeignKeyQuery(schema, "")
	if !caps.ForeignKeys || fkq.SQL == "" {
		return []models.ForeignKeyInfo{}, []string{i.unsupportedNote("foreign keys")}, nil
	}

	fks, err := i.foreignKeys(ctx, fkq)
	if err != nil {
		return nil, nil, err
	}
	return fks, nil, nil
}

// ProfileDatabase summarizes schema sizes and the largest tables.
func (i *Inspector) ProfileDatabase(ctx context.Context) (*models.DatabaseProfile, error) {
	info, err := i.DatabaseInfo(ctx)
	if err != nil {
		return nil, err
	}

	profile := &models.DatabaseProfile{
		Dialect:       i.adapter.Dialect(),
		DatabaseName:  info.DatabaseName,
		Schemas:       []models.SchemaProfile{},
		LargestTables: []models.TableProfileEntry{},
	}

	sq := i.adapter.ProfileSchemaQuery()
	srows, err := i.querier.Query(ctx, sq.SQL, sq.Args...)
	if err != nil {
		return nil, err
	}
	for _, row := range srows.Values {
		sp := models.SchemaProfile{
			Schema:     models.AsString(row[0]),
			TableCount: models.AsInt64(row[1]),
			TotalBytes: models.AsInt64(row[2]),
		}
		profile.Schemas = append(profile.Schemas, sp)
		profile.TotalTables += sp.TableCount
		profile.TotalBytes += sp.TotalBytes
	}

	tq := i.adapter.ProfileTablesQuery(ProfileTableCount)
	trows, err := i.querier.Query(ctx, tq.SQL, tq.Args...)
	if err != nil {
		return nil, err
	}
	for _, row := range trows.Values {
		profile.LargestTables = append(profile.LargestTables, models.TableProfileEntry{
			Schema:    models.AsString(row[0]),
			Table:     models.AsString(row[1]),
			SizeBytes: models.AsInt64(row[2]),
			RowCount:  models.AsInt64(row[3]),
		})
	}

	return profile, nil
}

func (i *Inspector) foreignKeys(ctx context.Context, q dialect.Query) ([]models.ForeignKeyInfo, error) {
	rows, err := i.querier.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	fks := make([]models.ForeignKeyInfo, 0, rows.RowCount())
	for _, row := range rows.Values {
		fks = append(fks, models.ForeignKeyInfo{
			ConstraintName:   models.AsString(row[0]),
			Schema:           models.AsString(row[1]),
			Table:            models.AsString(row[2]),
			Column:           models.AsString(row[3]),
			ReferencedSchema: models.AsString(row[4]),
			ReferencedTable:  models.AsString(row[5]),
			ReferencedColumn: models.AsString(row[6]),
		})
	}
	return fks, nil
}

func (i *Inspector) resolveSchema(schema string) string {
	if schema == "" {
		return i.adapter.DefaultSchema()
	}
	return schema
}

func (i *Inspector) unsupportedNote(feature string) string {
	return fmt.Sprintf("%s are not supported by %s", feature, i.adapter.Dialect())
}

func splitColumns(csv string) []string {
	if csv == "" {
		return []string{}
	}
	parts := strings.Split(csv, ",")
	for idx := range parts {
		parts[idx] = strings.TrimSpace(parts[idx])
	}
	return parts
}
