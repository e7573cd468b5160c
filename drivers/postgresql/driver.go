package postgresql

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/rediwo/refdata/registry"
	"github.com/rediwo/refdata/types"
)

func init() {
	driverType := string(types.DriverPostgreSQL)

	registry.Register(driverType, func(config types.Config) (types.Driver, error) {
		return NewPostgreSQLDriver(config)
	})
	registry.RegisterURIParser(driverType, NewPostgreSQLURIParser())
}

// PostgreSQLDriver opens lib/pq connections
type PostgreSQLDriver struct {
	config types.Config
	caps   *PostgreSQLCapabilities
}

func NewPostgreSQLDriver(config types.Config) (*PostgreSQLDriver, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("postgresql: host is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("postgresql: database name is required")
	}
	return &PostgreSQLDriver{config: config, caps: NewPostgreSQLCapabilities()}, nil
}

// DSN returns the keyword/value connection string understood by lib/pq
func (d *PostgreSQLDriver) DSN() string {
	parts := []string{"host=" + quoteValue(d.config.Host)}
	if d.config.Port != 0 {
		parts = append(parts, "port="+strconv.Itoa(d.config.Port))
	}
	if d.config.User != "" {
		parts = append(parts, "user="+quoteValue(d.config.User))
	}
	if d.config.Password != "" {
		parts = append(parts, "password="+quoteValue(d.config.Password))
	}
	parts = append(parts, "dbname="+quoteValue(d.config.Database))

	options := make(map[string]string, len(d.config.Options)+1)
	for k, v := range d.config.Options {
		options[k] = v
	}
	if _, ok := options["sslmode"]; !ok {
		options["sslmode"] = "disable"
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+quoteValue(options[k]))
	}

	return strings.Join(parts, " ")
}

func (d *PostgreSQLDriver) Open() (*sql.DB, error) {
	connector, err := pq.NewConnector(d.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

func (d *PostgreSQLDriver) GetCapabilities() types.DriverCapabilities {
	return d.caps
}

// quoteValue quotes a keyword/value connection parameter when needed
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
