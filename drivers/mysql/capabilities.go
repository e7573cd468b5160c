package mysql

import (
	"fmt"
	"strings"

	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/types"
)

// MySQLCapabilities implements types.DriverCapabilities for MySQL
type MySQLCapabilities struct{}

// NewMySQLCapabilities creates new MySQL capabilities
func NewMySQLCapabilities() *MySQLCapabilities {
	return &MySQLCapabilities{}
}

// Identifier quoting

func (c *MySQLCapabilities) QuoteIdentifier(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

func (c *MySQLCapabilities) GetPlaceholder(index int) string {
	return "?"
}

// DDL

func (c *MySQLCapabilities) ColumnType(field schema.Field) string {
	switch field.Type {
	case schema.FieldTypeString:
		if field.Size > 0 {
			return fmt.Sprintf("VARCHAR(%d)", field.Size)
		}
		return "VARCHAR(255)"
	case schema.FieldTypeText:
		return "TEXT"
	case schema.FieldTypeUUID:
		return "CHAR(36)"
	case schema.FieldTypeInt:
		return "INT"
	case schema.FieldTypeInt64:
		return "BIGINT"
	case schema.FieldTypeFloat:
		return "DOUBLE"
	case schema.FieldTypeBool:
		return "BOOLEAN"
	case schema.FieldTypeDateTime:
		return "DATETIME(6)"
	default:
		return "VARCHAR(255)"
	}
}

func (c *MySQLCapabilities) SupportsForeignKeys() bool {
	return true
}

// Driver identification

func (c *MySQLCapabilities) GetDriverType() types.DriverType {
	return types.DriverMySQL
}

func (c *MySQLCapabilities) GetSupportedSchemes() []string {
	return []string{"mysql"}
}
