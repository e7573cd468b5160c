package mysql

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/rediwo/refdata/registry"
	"github.com/rediwo/refdata/types"
)

func init() {
	driverType := string(types.DriverMySQL)

	registry.Register(driverType, func(config types.Config) (types.Driver, error) {
		return NewMySQLDriver(config)
	})
	registry.RegisterURIParser(driverType, NewMySQLURIParser())
}

// MySQLDriver opens go-sql-driver/mysql connections
type MySQLDriver struct {
	config types.Config
	caps   *MySQLCapabilities
}

func NewMySQLDriver(config types.Config) (*MySQLDriver, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("mysql: host is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("mysql: database name is required")
	}
	return &MySQLDriver{config: config, caps: NewMySQLCapabilities()}, nil
}

// Config builds the driver configuration. Time columns are always parsed
// into time.Time and read back in UTC.
func (d *MySQLDriver) Config() *mysql.Config {
	port := d.config.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = d.config.User
	cfg.Passwd = d.config.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.config.Host, strconv.Itoa(port))
	cfg.DBName = d.config.Database
	cfg.ParseTime = true

	for k, v := range d.config.Options {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[k] = v
	}
	return cfg
}

// DSN returns the go-sql-driver/mysql data source name
func (d *MySQLDriver) DSN() string {
	return d.Config().FormatDSN()
}

func (d *MySQLDriver) Open() (*sql.DB, error) {
	connector, err := mysql.NewConnector(d.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

func (d *MySQLDriver) GetCapabilities() types.DriverCapabilities {
	return d.caps
}
