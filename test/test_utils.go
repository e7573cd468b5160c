// Package test holds the shared fixtures of the integration tests and a
// conformance suite that runs the query core against every configured
// database.
package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/database"
	"github.com/rediwo/refdata/migration"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/query"
	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/service"
	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

// TestDatabase is a migrated database with the service stack wired on top
type TestDatabase struct {
	DB       *database.DB
	Registry *schema.Registry
	Fetcher  *query.Fetcher
	Service  *service.Service
	URI      string
	T        *testing.T
}

// NewTestDatabase opens uri, creates the tables and empties them. The
// tables are emptied again when the test ends.
func NewTestDatabase(t *testing.T, uri string) *TestDatabase {
	t.Helper()

	reg, err := models.NewRegistry()
	require.NoError(t, err)

	db, err := database.Open(uri)
	if err != nil {
		t.Skipf("Failed to open %s: %v", uri, err)
	}
	if err := db.Ping(context.Background()); err != nil {
		db.Close()
		t.Skipf("Failed to reach %s: %v", uri, err)
	}

	fetcher := query.NewFetcher(query.NewPlanner(reg, query.NewPlanCache()))
	td := &TestDatabase{
		DB:       db,
		Registry: reg,
		Fetcher:  fetcher,
		Service:  service.New(db, reg, fetcher),
		URI:      uri,
		T:        t,
	}

	require.NoError(t, migration.NewMigrator(db, reg).Migrate(context.Background()))
	td.CleanupTables()
	t.Cleanup(func() {
		td.CleanupTables()
		db.Close()
	})
	return td
}

// NewSQLite returns a fresh in-memory database
func NewSQLite(t *testing.T) *TestDatabase {
	t.Helper()
	return NewTestDatabase(t, "sqlite://:memory:")
}

// CleanupTables deletes every row, children first
func (td *TestDatabase) CleanupTables() {
	td.T.Helper()

	order, err := schema.SortByDependency(td.Registry.All())
	require.NoError(td.T, err)
	for i := len(order) - 1; i >= 0; i-- {
		sch, err := td.Registry.Get(order[i])
		require.NoError(td.T, err)
		_, err = td.DB.SQL().Exec("DELETE FROM " + td.DB.Quote(sch.TableName))
		require.NoError(td.T, err)
	}
}

// Session opens a session closed at the end of the test
func (td *TestDatabase) Session() *session.Session {
	s := session.New(td.DB, td.Registry)
	td.T.Cleanup(func() { s.Close() })
	return s
}

// CreateAsset stores an asset through the service
func (td *TestDatabase) CreateAsset(name, shortName, kind string) *models.Asset {
	td.T.Helper()

	a, err := td.Service.CreateAsset(context.Background(), models.AssetCreate{Name: name, ShortName: shortName, Type: kind})
	require.NoError(td.T, err)
	return a
}

// CreateAssetPair stores a pair through the service
func (td *TestDatabase) CreateAssetPair(base, quote *models.Asset) *models.AssetPair {
	td.T.Helper()

	p, err := td.Service.CreateAssetPair(context.Background(), models.AssetPairCreate{BaseID: base.ID, QuoteID: quote.ID})
	require.NoError(td.T, err)
	return p
}

// Record loads the raw record of an entity
func (td *TestDatabase) Record(model, id string) types.Record {
	td.T.Helper()

	rec, err := td.Session().Get(context.Background(), model, id)
	require.NoError(td.T, err)
	return rec
}
