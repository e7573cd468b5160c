package query

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/session"
	"github.com/rediwo/refdata/types"
)

func TestFetchPageRejectsBadPagination(t *testing.T) {
	reg := newRegistry(t, false)
	db, mock := openMock(t)
	s := session.New(db, reg)
	fetcher := newFetcher(reg)

	tests := []struct {
		name    string
		req     PageRequest
		message string
	}{
		{"page zero", PageRequest{Page: 0, Size: 10}, "Page number smaller than one not possible."},
		{"negative page", PageRequest{Page: -3, Size: 10}, "Page number smaller than one not possible."},
		{"size zero", PageRequest{Page: 1, Size: 0}, "Page size smaller than one not possible."},
		{"negative size", PageRequest{Page: 2, Size: -1}, "Page size smaller than one not possible."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := fetcher.FetchPage(context.Background(), s, "Asset", tt.req)
			assert.Nil(t, page)

			var perr *PaginationError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.message, perr.Message)
		})
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPageUnknownSortColumn(t *testing.T) {
	reg := newRegistry(t, false)
	db, mock := openMock(t)
	s := session.New(db, reg)

	_, err := newFetcher(reg).FetchPage(context.Background(), s, "Asset", PageRequest{
		Page: 1, Size: 10, Sort: &Sort{Field: "ticker"},
	})

	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "Sorting column not found on model.", cerr.Message)
	assert.Equal(t, 500, cerr.Status())

	var perr *PaginationError
	assert.NotErrorAs(t, err, &perr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPageUnknownFilterColumn(t *testing.T) {
	reg := newRegistry(t, false)
	db, mock := openMock(t)
	s := session.New(db, reg)
	fetcher := newFetcher(reg)

	for _, filter := range []types.Condition{
		types.Eq("ticker", "BTC"),
		types.Eq("AssetPair.base_id", "x"),
		types.Eq("Asset.ticker", "BTC"),
	} {
		_, err := fetcher.FetchPage(context.Background(), s, "Asset", PageRequest{
			Page: 1, Size: 10, Filters: []types.Condition{filter},
		})
		var cerr *ConfigurationError
		assert.ErrorAs(t, err, &cerr)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPageStatements(t *testing.T) {
	reg := newRegistry(t, false)
	db, mock := openMock(t)
	s := session.New(db, reg)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `assets` WHERE (`assets`.`type` = ?)")).
		WithArgs("crypto").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("FROM `assets` WHERE (`assets`.`type` = ?) ORDER BY `assets`.`name` DESC, `assets`.`id` ASC LIMIT ? OFFSET ?")).
		WithArgs("crypto", 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("a6", "Zcash").AddRow("a7", "Tron"))

	page, err := newFetcher(reg).FetchPage(context.Background(), s, "Asset", PageRequest{
		Page:    2,
		Size:    5,
		Filters: []types.Condition{types.Eq("type", "crypto")},
		Sort:    &Sort{Field: "name", Direction: types.DESC},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Size)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Zcash", page.Items[0]["name"])
}

func TestFetchPageSequentialInTransaction(t *testing.T) {
	reg := newRegistry(t, false)
	db, mock := openMock(t)
	s := session.New(db, reg)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `assets`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY `assets`.`id` ASC LIMIT ? OFFSET ?")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ctx := context.Background()
	require.NoError(t, s.Begin(ctx))
	page, err := newFetcher(reg).FetchPage(ctx, s, "Asset", PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func seedAssets(t *testing.T, n int) (*Fetcher, *session.Session) {
	t.Helper()

	reg := newRegistry(t, false)
	db, _ := openSQLite(t, reg)
	for i := range n {
		kind := "crypto"
		if i%3 == 0 {
			kind = "fiat"
		}
		s := session.New(db, reg)
		rec := types.Record{"name": fmt.Sprintf("Asset %02d", i), "short_name": fmt.Sprintf("A%02d", i), "type": kind}
		require.NoError(t, TryAddCommitRefresh(context.Background(), s, "Asset", rec))
		s.Close()
	}

	s := session.New(db, reg)
	t.Cleanup(func() { s.Close() })
	return newFetcher(reg), s
}

func TestFetchPageSumMatchesTotal(t *testing.T) {
	ctx := context.Background()
	fetcher, s := seedAssets(t, 11)

	filterSets := map[string][]types.Condition{
		"none":   nil,
		"crypto": {types.Eq("type", "crypto")},
		"like":   {types.Like("short_name", "A0%")},
	}

	for name, filters := range filterSets {
		t.Run(name, func(t *testing.T) {
			var totals []int64
			for _, size := range []int{1, 2, 3, 5, 20} {
				var seen int
				var total int64
				for pageNo := 1; ; pageNo++ {
					page, err := fetcher.FetchPage(ctx, s, "Asset", PageRequest{Page: pageNo, Size: size, Filters: filters})
					require.NoError(t, err)
					total = page.Total
					if len(page.Items) == 0 {
						break
					}
					assert.LessOrEqual(t, len(page.Items), size)
					seen += len(page.Items)
				}
				assert.Equal(t, int(total), seen)
				totals = append(totals, total)
			}
			for _, total := range totals {
				assert.Equal(t, totals[0], total)
			}
		})
	}
}

func TestFetchPageIdempotent(t *testing.T) {
	ctx := context.Background()
	fetcher, s := seedAssets(t, 6)
	req := PageRequest{Page: 1, Size: 4, Sort: &Sort{Field: "short_name", Direction: types.DESC}}

	first, err := fetcher.FetchPage(ctx, s, "Asset", req)
	require.NoError(t, err)
	second, err := fetcher.FetchPage(ctx, s, "Asset", req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "A05", first.Items[0]["short_name"])
}

func TestFetchPageEmpty(t *testing.T) {
	fetcher, s := seedAssets(t, 3)

	page, err := fetcher.FetchPage(context.Background(), s, "Asset", PageRequest{
		Page: 3, Size: 7, Filters: []types.Condition{types.Eq("short_name", "NOPE")},
	})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 7, page.Size)
}

func TestFetchPageOffsetOverflow(t *testing.T) {
	fetcher, s := seedAssets(t, 2)

	for _, req := range []PageRequest{
		{Page: 1<<62 + 1, Size: 4},
		{Page: math.MaxInt, Size: 2},
		{Page: 2, Size: math.MaxInt},
	} {
		page, err := fetcher.FetchPage(context.Background(), s, "Asset", req)
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items, "page %d size %d", req.Page, req.Size)
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, req.Page, page.Page)
		assert.Equal(t, req.Size, page.Size)
	}
}

func TestFetchPageOffsetOverflowSkipsPageQuery(t *testing.T) {
	reg := newRegistry(t, false)
	db, mock := openMock(t)
	s := session.New(db, reg)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `assets`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	page, err := newFetcher(reg).FetchPage(context.Background(), s, "Asset", PageRequest{Page: 1<<62 + 1, Size: 4})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(7), page.Total)
}

func TestFetchPageHydratesEveryItem(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, false)
	db, counter := openSQLite(t, reg)

	usd := seedAsset(t, db, reg, "US Dollar", "USD")
	for _, short := range []string{"BTC", "ETH", "SOL"} {
		seedPair(t, db, reg, seedAsset(t, db, reg, short, short), usd)
	}

	s := session.New(db, reg)
	defer s.Close()

	before := counter.statements.Load()
	page, err := newFetcher(reg).FetchPage(ctx, s, "AssetPair", PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	// count, page, base, quote
	assert.Equal(t, int64(4), counter.statements.Load()-before)

	require.Len(t, page.Items, 3)
	for _, item := range page.Items {
		assert.Equal(t, "USD", item["quote"].(types.Record)["short_name"])
		assert.NotEmpty(t, item["base"].(types.Record)["short_name"])
	}
}

func TestFetchPageJoins(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t, true)
	db, _ := openSQLite(t, reg)

	btc := seedAsset(t, db, reg, "Bitcoin", "BTC")
	eth := seedAsset(t, db, reg, "Ether", "ETH")
	usd := seedAsset(t, db, reg, "US Dollar", "USD")
	eur := seedAsset(t, db, reg, "Euro", "EUR")
	seedPair(t, db, reg, btc, usd)
	seedPair(t, db, reg, eth, eur)

	s := session.New(db, reg)
	defer s.Close()
	fetcher := newFetcher(reg)

	// declared on the root: assets.id = asset_pairs.base_id
	page, err := fetcher.FetchPage(ctx, s, "Asset", PageRequest{
		Page:    1,
		Size:    10,
		Joins:   []Join{{Model: "AssetPair"}},
		Filters: []types.Condition{types.Eq("AssetPair.quote_id", eur["id"])},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "ETH", page.Items[0]["short_name"])

	// two relationships lead from pairs to assets
	_, err = fetcher.FetchPage(ctx, s, "AssetPair", PageRequest{
		Page: 1, Size: 10, Joins: []Join{{Model: "Asset"}},
	})
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)

	page, err = fetcher.FetchPage(ctx, s, "AssetPair", PageRequest{
		Page:    1,
		Size:    10,
		Joins:   []Join{{Model: "Asset", On: types.Raw("`assets`.`id` = `asset_pairs`.`base_id`")}},
		Filters: []types.Condition{types.Eq("Asset.short_name", "BTC")},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "USD", page.Items[0]["quote"].(types.Record)["short_name"])
}
