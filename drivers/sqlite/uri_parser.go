package sqlite

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rediwo/refdata/types"
)

// SQLiteURIParser implements URIParser for SQLite databases
type SQLiteURIParser struct{}

// NewSQLiteURIParser creates a new SQLite URI parser
func NewSQLiteURIParser() *SQLiteURIParser {
	return &SQLiteURIParser{}
}

// ParseURI parses a SQLite URI and returns a Config
// Supported formats:
//   - sqlite:///absolute/path/database.db
//   - sqlite://relative/path/database.db
//   - sqlite://:memory:
func (p *SQLiteURIParser) ParseURI(uri string) (types.Config, error) {
	parsedURI, err := url.Parse(uri)
	if err != nil {
		// url.Parse rejects "sqlite://:memory:" as a bad port
		if strings.HasPrefix(uri, "sqlite://:memory:") || strings.HasPrefix(uri, "sqlite3://:memory:") {
			return types.Config{Type: string(types.DriverSQLite), FilePath: ":memory:", Options: map[string]string{}}, nil
		}
		return types.Config{}, fmt.Errorf("invalid URI format: %w", err)
	}

	if parsedURI.Scheme != "sqlite" && parsedURI.Scheme != "sqlite3" {
		return types.Config{}, fmt.Errorf("unsupported URI scheme: %s", parsedURI.Scheme)
	}

	config := types.Config{
		Type:    string(types.DriverSQLite),
		Options: make(map[string]string),
	}

	for key, values := range parsedURI.Query() {
		if len(values) > 0 {
			config.Options[key] = values[0]
		}
	}

	if parsedURI.Host == "" && strings.HasPrefix(parsedURI.Path, "/:memory:") {
		config.FilePath = ":memory:"
		return config, nil
	}

	path := parsedURI.Path
	if parsedURI.Host != "" {
		// sqlite://relative/path/database.db -> relative/path/database.db
		path = parsedURI.Host + path
	}
	if path == "" {
		return types.Config{}, fmt.Errorf("database path is required")
	}

	config.FilePath = path
	return config, nil
}

// GetSupportedSchemes returns the URI schemes this parser supports
func (p *SQLiteURIParser) GetSupportedSchemes() []string {
	return []string{"sqlite", "sqlite3"}
}

// GetDriverType returns the driver type this parser is for
func (p *SQLiteURIParser) GetDriverType() string {
	return string(types.DriverSQLite)
}
