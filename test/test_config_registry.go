package test

import (
	"os"
	"sync"
)

// testDatabaseURIRegistry holds registered test database URIs
var (
	testDatabaseURIRegistry = map[string]string{
		"sqlite": "sqlite://:memory:",
	}
	registryMutex sync.RWMutex
)

// envURIs names the environment variables that point the conformance
// suite at a live server
var envURIs = map[string]string{
	"postgresql": "TEST_POSTGRESQL_URI",
	"mysql":      "TEST_MYSQL_URI",
}

// RegisterTestDatabaseUri registers a test database URI for a driver
func RegisterTestDatabaseUri(driverType string, uri string) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	testDatabaseURIRegistry[driverType] = uri
}

// GetTestDatabaseUri returns the test database URI for a driver, falling
// back to the driver's environment variable. ok is false when neither is set.
func GetTestDatabaseUri(driverType string) (uri string, ok bool) {
	registryMutex.RLock()
	uri, ok = testDatabaseURIRegistry[driverType]
	registryMutex.RUnlock()
	if ok {
		return uri, true
	}

	if env, known := envURIs[driverType]; known {
		if uri = os.Getenv(env); uri != "" {
			return uri, true
		}
	}
	return "", false
}
