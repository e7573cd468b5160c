package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/spf13/viper"
)

// Settings holds the runtime configuration of the service. Values come from
// defaults, environment variables, an optional YAML file and CLI flags, in
// increasing order of precedence.
type Settings struct {
	DBURI           string `mapstructure:"db_uri"`
	DBDriver        string `mapstructure:"db_driver"`
	DBHost          string `mapstructure:"db_host"`
	DBPort          int    `mapstructure:"db_port"`
	DBName          string `mapstructure:"db_name"`
	DBUser          string `mapstructure:"db_user"`
	DBPassword      string `mapstructure:"db_password"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	Port            int    `mapstructure:"port"`
	LogLevel        string `mapstructure:"log_level"`
	GraphQL         bool   `mapstructure:"graphql"`
}

// env lists the environment variables bound to each key, first match wins
var env = map[string][]string{
	"db_uri":            {"DB_URI"},
	"db_driver":         {"DB_DRIVER"},
	"db_host":           {"DB_HOST"},
	"db_port":           {"DB_PORT"},
	"db_name":           {"DB_NAME", "POSTGRES_DB"},
	"db_user":           {"DB_USER", "POSTGRES_USER"},
	"db_password":       {"DB_PASSWORD", "POSTGRES_PASSWORD"},
	"default_page_size": {"DEFAULT_PAGE_SIZE"},
	"port":              {"PORT"},
	"log_level":         {"LOG_LEVEL"},
	"graphql":           {"GRAPHQL"},
}

// New returns a viper instance with defaults and environment bindings set
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("db_uri", "")
	v.SetDefault("db_driver", "postgresql")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_name", "postgres")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("default_page_size", 50)
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("graphql", true)

	for key, names := range env {
		input := append([]string{key}, names...)
		_ = v.BindEnv(input...)
	}
	return v
}

// Load reads file into v when given and decodes the result
func Load(v *viper.Viper, file string) (*Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if s.DefaultPageSize < 1 {
		return errors.New("default_page_size must be at least 1")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	return nil
}

// DatabaseURI returns db_uri or builds one from the discrete db_* settings
func (s *Settings) DatabaseURI() (string, error) {
	if s.DBURI != "" {
		return s.DBURI, nil
	}

	switch s.DBDriver {
	case "postgresql", "postgres", "mysql":
		scheme := s.DBDriver
		if scheme == "postgres" {
			scheme = "postgresql"
		}
		u := url.URL{
			Scheme: scheme,
			User:   url.UserPassword(s.DBUser, s.DBPassword),
			Host:   net.JoinHostPort(s.DBHost, strconv.Itoa(s.DBPort)),
			Path:   "/" + s.DBName,
		}
		return u.String(), nil
	case "sqlite", "sqlite3":
		if s.DBName == "" || s.DBName == ":memory:" {
			return "sqlite://:memory:", nil
		}
		return "sqlite://" + s.DBName, nil
	default:
		return "", fmt.Errorf("unsupported db_driver %q", s.DBDriver)
	}
}
