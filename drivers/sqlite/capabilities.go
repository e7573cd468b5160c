package sqlite

import (
	"fmt"
	"strings"

	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/types"
)

// SQLiteCapabilities implements types.DriverCapabilities for SQLite
type SQLiteCapabilities struct{}

// NewSQLiteCapabilities creates new SQLite capabilities
func NewSQLiteCapabilities() *SQLiteCapabilities {
	return &SQLiteCapabilities{}
}

// Identifier quoting

func (c *SQLiteCapabilities) QuoteIdentifier(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

func (c *SQLiteCapabilities) GetPlaceholder(index int) string {
	return "?"
}

// DDL

func (c *SQLiteCapabilities) ColumnType(field schema.Field) string {
	switch field.Type {
	case schema.FieldTypeInt, schema.FieldTypeInt64, schema.FieldTypeBool:
		return "INTEGER"
	case schema.FieldTypeFloat:
		return "REAL"
	case schema.FieldTypeDateTime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func (c *SQLiteCapabilities) SupportsForeignKeys() bool {
	return true
}

// Driver identification

func (c *SQLiteCapabilities) GetDriverType() types.DriverType {
	return types.DriverSQLite
}

func (c *SQLiteCapabilities) GetSupportedSchemes() []string {
	return []string{"sqlite", "sqlite3"}
}
