package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServerURI(t *testing.T) {
	config, err := ParseServerURI("pg://u:p%40ss@db.internal/assets?sslmode=require", DriverPostgreSQL, 5432, "pg")
	require.NoError(t, err)
	assert.Equal(t, Config{
		Type:     "postgresql",
		Host:     "db.internal",
		Port:     5432,
		User:     "u",
		Password: "p@ss",
		Database: "assets",
		Options:  map[string]string{"sslmode": "require"},
	}, config)

	for _, uri := range []string{
		"other://h/d",
		"pg:///d",
		"pg://h",
		"pg://h:port/d",
	} {
		_, err := ParseServerURI(uri, DriverPostgreSQL, 5432, "pg")
		assert.Error(t, err, uri)
	}
}
