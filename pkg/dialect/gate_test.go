package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugui923/db-connect-mcp/pkg/models"
)

func TestSupportedOperations(t *testing.T) {
	pg, err := New(models.DialectPostgres)
	require.NoError(t, err)
	ch, err := New(models.DialectClickHouse)
	require.NoError(t, err)

	pgOps := SupportedOperations(pg.Capabilities())
	assert.Len(t, pgOps, 10)
	assert.Contains(t, pgOps, OpGetTableRelationships)

	chOps := SupportedOperations(ch.Capabilities())
	assert.Len(t, chOps, 9)
	assert.NotContains(t, chOps, OpGetTableRelationships)
	assert.Contains(t, chOps, OpExplainQuery)
}
