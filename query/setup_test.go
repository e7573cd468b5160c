package query

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/database"
	"github.com/rediwo/refdata/drivers/sqlite"
	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/migration"
	"github.com/rediwo/refdata/schema"
	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

func assetSchema() *schema.Schema {
	return schema.NewEntity("Asset").
		AddField(schema.NewField("name").Build()).
		AddField(schema.NewField("short_name").Unique().Build()).
		AddField(schema.NewField("type").Build())
}

func pairSchema() *schema.Schema {
	return schema.NewEntity("AssetPair").
		AddField(schema.NewField("base_id").UUID().Index().Build()).
		AddField(schema.NewField("quote_id").UUID().Index().Build()).
		AddRelation("base", schema.Relation{Type: schema.RelationManyToOne, Model: "Asset", ForeignKey: "base_id"}).
		AddRelation("quote", schema.Relation{Type: schema.RelationManyToOne, Model: "Asset", ForeignKey: "quote_id"})
}

// newRegistry declares assets and pairs. With inverse set, assets also
// carry the to-many base_pairs relationship, which makes the schema cyclic.
func newRegistry(t *testing.T, inverse bool) *schema.Registry {
	t.Helper()

	asset := assetSchema()
	if inverse {
		asset.AddRelation("base_pairs", schema.Relation{Type: schema.RelationOneToMany, Model: "AssetPair", ForeignKey: "base_id"})
	}

	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(asset, pairSchema()))
	require.NoError(t, reg.Validate())
	return reg
}

// countingLogger counts the statements logged through DBLogger.LogSQL
type countingLogger struct {
	logger.NullLogger
	statements atomic.Int64
}

func (l *countingLogger) Debug(format string, args ...any) {
	if strings.HasPrefix(format, "SQL (") {
		l.statements.Add(1)
	}
}

func (l *countingLogger) GetLevel() logger.LogLevel {
	return logger.LogLevelDebug
}

func openSQLite(t *testing.T, reg *schema.Registry) (*database.DB, *countingLogger) {
	t.Helper()

	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewMigrator(db, reg).Migrate(context.Background()))

	counter := &countingLogger{}
	db.SetLogger(counter)
	return db, counter
}

func openMock(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return database.New(sqlDB, sqlite.NewSQLiteCapabilities()), mock
}

func newFetcher(reg *schema.Registry) *Fetcher {
	return NewFetcher(NewPlanner(reg, NewPlanCache()))
}

func seedAsset(t *testing.T, db *database.DB, reg *schema.Registry, name, short string) types.Record {
	t.Helper()

	s := session.New(db, reg)
	defer s.Close()
	rec := types.Record{"name": name, "short_name": short, "type": "crypto"}
	require.NoError(t, TryAddCommitRefresh(context.Background(), s, "Asset", rec))
	return rec
}

func seedPair(t *testing.T, db *database.DB, reg *schema.Registry, base, quote types.Record) types.Record {
	t.Helper()

	s := session.New(db, reg)
	defer s.Close()
	rec := types.Record{"base_id": base["id"], "quote_id": quote["id"]}
	require.NoError(t, TryAddCommitRefresh(context.Background(), s, "AssetPair", rec))
	return rec
}
