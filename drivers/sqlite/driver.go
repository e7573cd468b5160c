package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rediwo/refdata/registry"
	"github.com/rediwo/refdata/types"
)

func init() {
	driverType := string(types.DriverSQLite)

	registry.Register(driverType, func(config types.Config) (types.Driver, error) {
		return NewSQLiteDriver(config)
	})
	registry.RegisterURIParser(driverType, NewSQLiteURIParser())
}

// SQLiteDriver opens mattn/go-sqlite3 connections
type SQLiteDriver struct {
	config types.Config
	caps   *SQLiteCapabilities
}

func NewSQLiteDriver(config types.Config) (*SQLiteDriver, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("sqlite: file path is required")
	}
	return &SQLiteDriver{config: config, caps: NewSQLiteCapabilities()}, nil
}

// DSN returns the go-sqlite3 data source name. Foreign keys are enforced
// unless the URI says otherwise.
func (d *SQLiteDriver) DSN() string {
	params := make(map[string]string, len(d.config.Options)+1)
	for k, v := range d.config.Options {
		params[k] = v
	}
	if params["_foreign_keys"] == "" && params["_fk"] == "" {
		params["_foreign_keys"] = "on"
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = url.QueryEscape(k) + "=" + url.QueryEscape(params[k])
	}
	return d.config.FilePath + "?" + strings.Join(pairs, "&")
}

func (d *SQLiteDriver) Open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", d.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if d.config.FilePath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func (d *SQLiteDriver) GetCapabilities() types.DriverCapabilities {
	return d.caps
}
