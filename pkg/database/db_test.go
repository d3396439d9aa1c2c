package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fleet-crm/internal/domain"
)

func TestFilterClause(t *testing.T) {
	where, args := filterClause(domain.ListFilter{})
	assert.Empty(t, where)
	assert.Nil(t, args)

	where, args = filterClause(domain.ListFilter{Search: " 50%_off ", State: "sp"})
	assert.Equal(t, " WHERE (name LIKE ? OR tax_id LIKE ?) AND state = ?", where)
	assert.Equal(t, []any{`%50\%\_off%`, `%50\%\_off%`, "SP"}, args)

	where, args = filterClause(domain.ListFilter{}, "company_id = ?")
	assert.Equal(t, " WHERE company_id = ?", where)
	assert.Empty(t, args)
}

func TestDocumentTable(t *testing.T) {
	ddl := documentTable("contacts", "name", "state")
	assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS contacts ("))
	assert.Contains(t, ddl, "doc JSON NOT NULL")
	assert.Contains(t, ddl, "KEY idx_contacts_state (state)")
	assert.Len(t, schema, 6)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "São", truncate("São Paulo", 3))
	assert.Equal(t, "SP", truncate("SP", 2))
}
