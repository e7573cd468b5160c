package registry

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/types"
)

// Clear registries for testing
func clearRegistries() {
	mu.Lock()
	defer mu.Unlock()
	drivers = make(map[string]DriverFactory)
	uriParsers = make(map[string]types.URIParser)
}

type mockURIParser struct {
	supportedSchemes []string
	driverType       string
}

func (m *mockURIParser) ParseURI(uri string) (types.Config, error) {
	_, rest, _ := strings.Cut(uri, "://")
	if rest == "" {
		return types.Config{}, fmt.Errorf("host is required")
	}
	return types.Config{Type: m.driverType, Host: rest}, nil
}

func (m *mockURIParser) GetSupportedSchemes() []string {
	return m.supportedSchemes
}

func (m *mockURIParser) GetDriverType() string {
	return m.driverType
}

func nopFactory(types.Config) (types.Driver, error) {
	return nil, nil
}

func TestRegisterAndGet(t *testing.T) {
	clearRegistries()

	Register("testdb", nopFactory)

	factory, err := Get("testdb")
	require.NoError(t, err)
	assert.NotNil(t, factory)

	_, err = Get("nonexistent")
	assert.Error(t, err)

	assert.Panics(t, func() { Register("testdb", nopFactory) })
}

func TestRegisterURIParser(t *testing.T) {
	clearRegistries()

	RegisterURIParser("pg", &mockURIParser{driverType: "pg", supportedSchemes: []string{"postgres", "postgresql"}})

	parser, err := GetURIParser("pg")
	require.NoError(t, err)
	assert.Equal(t, "pg", parser.GetDriverType())

	_, err = GetURIParser("nonexistent")
	assert.Error(t, err)

	assert.Panics(t, func() {
		RegisterURIParser("pg", &mockURIParser{driverType: "pg"})
	})
	assert.Len(t, GetAllURIParsers(), 1)
}

func TestParseURI(t *testing.T) {
	clearRegistries()

	RegisterURIParser("valid", &mockURIParser{driverType: "valid", supportedSchemes: []string{"valid"}})
	RegisterURIParser("test", &mockURIParser{driverType: "test", supportedSchemes: []string{"test", "tst"}})

	tests := []struct {
		name     string
		uri      string
		wantType string
		wantHost string
		wantErr  bool
	}{
		{"first parser", "valid://localhost:5432", "valid", "localhost:5432", false},
		{"second parser", "test://example.com", "test", "example.com", false},
		{"alias scheme", "tst://example.com", "test", "example.com", false},
		{"parser error", "test://", "", "", true},
		{"unknown scheme", "invalid://something", "", "", true},
		{"no scheme", "localhost", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, config.Type)
			assert.Equal(t, tt.wantHost, config.Host)
		})
	}
}

func TestParseURINoParserRegistered(t *testing.T) {
	clearRegistries()

	_, err := ParseURI("test://something")
	require.Error(t, err)
	assert.Equal(t, "no URI parsers registered", err.Error())
}

func TestConcurrentAccess(t *testing.T) {
	clearRegistries()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			Register(fmt.Sprintf("driver%d", id), nopFactory)
		}(i)
		go func(id int) {
			defer wg.Done()
			_, _ = Get(fmt.Sprintf("driver%d", id))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		_, err := Get(fmt.Sprintf("driver%d", i))
		assert.NoError(t, err)
	}
}
