package types

import (
	"database/sql"

	"github.com/rediwo/refdata/schema"
)

// DriverType names a registered SQL driver
type DriverType string

const (
	DriverSQLite     DriverType = "sqlite"
	DriverMySQL      DriverType = "mysql"
	DriverPostgreSQL DriverType = "postgresql"
)

func (d DriverType) String() string {
	return string(d)
}

// Config is a parsed connection URI. FilePath is used by SQLite only.
type Config struct {
	Type     string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	FilePath string
	Options  map[string]string
}

// DriverCapabilities is the SQL dialect of a driver: how identifiers are
// quoted, how placeholders are numbered and which column types the
// migrator emits.
type DriverCapabilities interface {
	QuoteIdentifier(name string) string
	GetPlaceholder(index int) string
	ColumnType(field schema.Field) string
	SupportsForeignKeys() bool
	GetDriverType() DriverType
	GetSupportedSchemes() []string
}

// Driver opens the pool for one configured database
type Driver interface {
	Open() (*sql.DB, error)
	GetCapabilities() DriverCapabilities
}
