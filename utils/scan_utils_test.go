package utils

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRowsToMaps(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE test_table (
		id INTEGER PRIMARY KEY,
		name TEXT,
		value INTEGER,
		data BLOB
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO test_table (id, name, value, data) VALUES
		(1, 'test1', 100, 'binary1'),
		(2, 'test2', 200, NULL)`)
	require.NoError(t, err)

	rows, err := db.Query("SELECT * FROM test_table ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	results, err := ScanRowsToMaps(rows)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, int64(1), results[0]["id"])
	assert.Equal(t, "test1", results[0]["name"])
	assert.Equal(t, int64(100), results[0]["value"])
	assert.Equal(t, "binary1", results[0]["data"])
	assert.Nil(t, results[1]["data"])
}

func TestScanRowsToMaps_Empty(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE empty_table (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	rows, err := db.Query("SELECT * FROM empty_table")
	require.NoError(t, err)
	defer rows.Close()

	results, err := ScanRowsToMaps(rows)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestScanCount(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT 42")
	require.NoError(t, err)
	defer rows.Close()

	count, err := ScanCount(rows)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}
