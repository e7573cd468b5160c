package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rediwo/refdata/types"
)

// DriverFactory creates a driver for a parsed connection config
type DriverFactory func(config types.Config) (types.Driver, error)

var (
	drivers    = make(map[string]DriverFactory)
	uriParsers = make(map[string]types.URIParser)
	mu         sync.RWMutex
)

// Register registers a database driver factory
func Register(driverType string, factory DriverFactory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := drivers[driverType]; exists {
		panic(fmt.Sprintf("driver %s already registered", driverType))
	}

	drivers[driverType] = factory
}

// Get retrieves a registered driver factory
func Get(driverType string) (DriverFactory, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, exists := drivers[driverType]
	if !exists {
		return nil, fmt.Errorf("driver %s not registered", driverType)
	}

	return factory, nil
}

// RegisterURIParser registers the URI parser of a driver
func RegisterURIParser(driverType string, parser types.URIParser) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := uriParsers[driverType]; exists {
		panic(fmt.Sprintf("URI parser for %s already registered", driverType))
	}

	uriParsers[driverType] = parser
}

// GetURIParser retrieves the URI parser of a driver
func GetURIParser(driverType string) (types.URIParser, error) {
	mu.RLock()
	defer mu.RUnlock()

	parser, exists := uriParsers[driverType]
	if !exists {
		return nil, fmt.Errorf("URI parser for %s not registered", driverType)
	}
	return parser, nil
}

// GetAllURIParsers returns a copy of the registered parsers keyed by driver type
func GetAllURIParsers() map[string]types.URIParser {
	mu.RLock()
	defer mu.RUnlock()

	parsers := make(map[string]types.URIParser, len(uriParsers))
	for k, v := range uriParsers {
		parsers[k] = v
	}
	return parsers
}

// ParseURI finds the parser owning the URI scheme and parses the URI
func ParseURI(uri string) (types.Config, error) {
	parsers := GetAllURIParsers()
	if len(parsers) == 0 {
		return types.Config{}, errors.New("no URI parsers registered")
	}

	scheme, _, found := strings.Cut(uri, "://")
	if !found {
		return types.Config{}, fmt.Errorf("invalid URI: %q", uri)
	}

	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parser := parsers[name]
		for _, s := range parser.GetSupportedSchemes() {
			if s == scheme {
				return parser.ParseURI(uri)
			}
		}
	}

	return types.Config{}, fmt.Errorf("unsupported database scheme: %s", scheme)
}
