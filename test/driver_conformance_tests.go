package test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/integrity"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/query"
	"github.com/rediwo/refdata/service"
	"github.com/rediwo/refdata/types"
)

// DriverConformanceTests checks that the query core behaves the same on
// every supported database
type DriverConformanceTests struct {
	DriverName string
	URI        string
}

// NewDriverConformanceTests resolves the URI registered for driverName and
// skips the test when there is none
func NewDriverConformanceTests(t *testing.T, driverName string) *DriverConformanceTests {
	uri, ok := GetTestDatabaseUri(driverName)
	if !ok {
		t.Skipf("no test database configured for %s", driverName)
	}
	return &DriverConformanceTests{DriverName: driverName, URI: uri}
}

// RunAll runs all conformance tests
func (dct *DriverConformanceTests) RunAll(t *testing.T) {
	t.Run("Integrity", func(t *testing.T) {
		t.Run("DuplicateShortName", dct.TestDuplicateShortName)
		t.Run("MissingForeignKeyTarget", dct.TestMissingForeignKeyTarget)
		t.Run("DeleteReferencedAsset", dct.TestDeleteReferencedAsset)
		t.Run("NotNull", dct.TestNotNull)
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("FetchFullPair", dct.TestFetchFullPair)
		t.Run("FetchFullMissing", dct.TestFetchFullMissing)
		t.Run("RoundTrip", dct.TestRoundTrip)
	})

	t.Run("Page", func(t *testing.T) {
		t.Run("SumMatchesTotal", dct.TestPageSumMatchesTotal)
		t.Run("SortDescending", dct.TestPageSortDescending)
		t.Run("Empty", dct.TestPageEmpty)
		t.Run("InTransaction", dct.TestPageInTransaction)
	})
}

func (dct *DriverConformanceTests) open(t *testing.T) *TestDatabase {
	return NewTestDatabase(t, dct.URI)
}

func (dct *DriverConformanceTests) TestDuplicateShortName(t *testing.T) {
	td := dct.open(t)
	td.CreateAsset("Bitcoin", "BTC", "crypto")

	_, err := td.Service.CreateAsset(context.Background(), models.AssetCreate{Name: "Bitcoin Cash", ShortName: "BTC", Type: "crypto"})
	var v *integrity.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, integrity.Unique, v.Bucket)
	assert.Equal(t, http.StatusConflict, v.Status)
	assert.Contains(t, v.Message, "short_name")
}

func (dct *DriverConformanceTests) TestMissingForeignKeyTarget(t *testing.T) {
	td := dct.open(t)
	btc := td.CreateAsset("Bitcoin", "BTC", "crypto")

	_, err := td.Service.CreateAssetPair(context.Background(), models.AssetPairCreate{BaseID: btc.ID, QuoteID: uuid.NewString()})
	var v *integrity.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, integrity.ForeignKey, v.Bucket)
	assert.Equal(t, http.StatusBadRequest, v.Status)
}

func (dct *DriverConformanceTests) TestDeleteReferencedAsset(t *testing.T) {
	td := dct.open(t)
	btc := td.CreateAsset("Bitcoin", "BTC", "crypto")
	usd := td.CreateAsset("US Dollar", "USD", "fiat")
	td.CreateAssetPair(btc, usd)

	err := td.Service.DeleteAsset(context.Background(), usd.ID)
	var v *integrity.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, integrity.ForeignKey, v.Bucket)
	assert.Equal(t, http.StatusInternalServerError, v.Status)

	assert.NotNil(t, td.Record(models.AssetModel, usd.ID))
}

func (dct *DriverConformanceTests) TestNotNull(t *testing.T) {
	td := dct.open(t)
	s := td.Session()

	err := query.TryAddCommitRefresh(context.Background(), s, models.AssetModel,
		types.Record{"name": "Nameless", "short_name": "NUL", "type": nil})
	var v *integrity.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, integrity.NotNull, v.Bucket)
	assert.Equal(t, http.StatusBadRequest, v.Status)
}

func (dct *DriverConformanceTests) TestFetchFullPair(t *testing.T) {
	td := dct.open(t)
	btc := td.CreateAsset("Bitcoin", "BTC", "crypto")
	usd := td.CreateAsset("US Dollar", "USD", "fiat")
	pair := td.CreateAssetPair(btc, usd)

	require.NotNil(t, pair.Base)
	require.NotNil(t, pair.Quote)
	assert.Equal(t, btc, pair.Base)
	assert.Equal(t, usd, pair.Quote)

	rec, err := td.Fetcher.FetchFull(context.Background(), td.Session(), models.AssetPairModel, pair.ID)
	require.NoError(t, err)
	assert.Equal(t, "BTC", rec["base"].(types.Record)["short_name"])
	assert.Equal(t, "USD", rec["quote"].(types.Record)["short_name"])
}

func (dct *DriverConformanceTests) TestFetchFullMissing(t *testing.T) {
	td := dct.open(t)

	rec, err := td.Fetcher.FetchFull(context.Background(), td.Session(), models.AssetPairModel, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = td.Service.RetrieveAssetPair(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, service.ErrAssetPairNotFound)
}

func (dct *DriverConformanceTests) TestRoundTrip(t *testing.T) {
	td := dct.open(t)
	btc := td.CreateAsset("Bitcoin", "BTC", "crypto")
	usd := td.CreateAsset("US Dollar", "USD", "fiat")
	created := td.CreateAssetPair(btc, usd)

	got, err := td.Service.RetrieveAssetPair(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	asset, err := td.Service.RetrieveAsset(context.Background(), btc.ID)
	require.NoError(t, err)
	assert.Equal(t, btc, asset)
}

func (dct *DriverConformanceTests) seed(td *TestDatabase, n int) {
	for i := range n {
		kind := "crypto"
		if i%2 == 0 {
			kind = "fiat"
		}
		td.CreateAsset(fmt.Sprintf("Asset %02d", i), fmt.Sprintf("A%02d", i), kind)
	}
}

func (dct *DriverConformanceTests) TestPageSumMatchesTotal(t *testing.T) {
	td := dct.open(t)
	dct.seed(td, 9)
	ctx := context.Background()

	for _, size := range []int{1, 2, 4, 10} {
		seen := 0
		var total int64
		for page := 1; ; page++ {
			res, err := td.Fetcher.FetchPage(ctx, td.Session(), models.AssetModel, query.PageRequest{
				Page: page, Size: size, Filters: []types.Condition{types.Eq("type", "fiat")},
			})
			require.NoError(t, err)
			total = res.Total
			if len(res.Items) == 0 {
				break
			}
			seen += len(res.Items)
		}
		assert.Equal(t, int64(5), total)
		assert.Equal(t, 5, seen)
	}
}

func (dct *DriverConformanceTests) TestPageSortDescending(t *testing.T) {
	td := dct.open(t)
	dct.seed(td, 4)

	page, err := td.Service.RetrieveAssets(context.Background(), service.ListOptions{
		Page: 1, Size: 2, Sort: "short_name", Direction: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "A03", page.Items[0].ShortName)
	assert.Equal(t, "A02", page.Items[1].ShortName)
}

func (dct *DriverConformanceTests) TestPageEmpty(t *testing.T) {
	td := dct.open(t)

	page, err := td.Service.RetrieveAssetPairs(context.Background(), service.ListOptions{Page: 4, Size: 3})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 4, page.Page)
	assert.Equal(t, 3, page.Size)
}

func (dct *DriverConformanceTests) TestPageInTransaction(t *testing.T) {
	td := dct.open(t)
	dct.seed(td, 3)
	ctx := context.Background()

	s := td.Session()
	require.NoError(t, s.Begin(ctx))
	require.NoError(t, s.Add(models.AssetModel, types.Record{"name": "Pending", "short_name": "PND", "type": "crypto"}))
	require.NoError(t, s.Flush(ctx))

	page, err := td.Fetcher.FetchPage(ctx, s, models.AssetModel, query.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Len(t, page.Items, 4)

	require.NoError(t, s.Rollback())
}
