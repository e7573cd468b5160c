package postgresql

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/types"
)

// PostgreSQLCapabilities implements types.DriverCapabilities for PostgreSQL
type PostgreSQLCapabilities struct{}

// NewPostgreSQLCapabilities creates new PostgreSQL capabilities
func NewPostgreSQLCapabilities() *PostgreSQLCapabilities {
	return &PostgreSQLCapabilities{}
}

// Identifier quoting

func (c *PostgreSQLCapabilities) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (c *PostgreSQLCapabilities) GetPlaceholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// DDL

func (c *PostgreSQLCapabilities) ColumnType(field schema.Field) string {
	switch field.Type {
	case schema.FieldTypeString:
		if field.Size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", field.Size)
		}
		return "VARCHAR(255)"
	case schema.FieldTypeText:
		return "TEXT"
	case schema.FieldTypeUUID:
		return "UUID"
	case schema.FieldTypeInt:
		return "INTEGER"
	case schema.FieldTypeInt64:
		return "BIGINT"
	case schema.FieldTypeFloat:
		return "DOUBLE PRECISION"
	case schema.FieldTypeBool:
		return "BOOLEAN"
	case schema.FieldTypeDateTime:
		return "TIMESTAMP WITH TIME ZONE"
	default:
		return "VARCHAR(255)"
	}
}

func (c *PostgreSQLCapabilities) SupportsForeignKeys() bool {
	return true
}

// Driver identification

func (c *PostgreSQLCapabilities) GetDriverType() types.DriverType {
	return types.DriverPostgreSQL
}

func (c *PostgreSQLCapabilities) GetSupportedSchemes() []string {
	return []string{"postgresql", "postgres"}
}
