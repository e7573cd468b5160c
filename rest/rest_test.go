package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/refdata/graphql"
	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/models"
	"github.com/rediwo/refdata/rest"
	"github.com/rediwo/refdata/service"
	"github.com/rediwo/refdata/test"
)

func newTestServer(t *testing.T) (*httptest.Server, *test.TestDatabase) {
	t.Helper()

	td := test.NewSQLite(t)
	server, err := rest.NewServer(rest.ServerConfig{
		Service:         td.Service,
		DefaultPageSize: 2,
		Logger:          logger.NewNullLogger(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Router)
	t.Cleanup(ts.Close)
	return ts, td
}

func makeRequest(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeInto[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func createAsset(t *testing.T, ts *httptest.Server, short string) models.Asset {
	t.Helper()
	resp, body := makeRequest(t, ts, http.MethodPost, "/assets/", map[string]string{
		"name": short + " coin", "short_name": short, "type": "crypto",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	return decodeInto[models.Asset](t, body)
}

func TestAssetEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	btc := createAsset(t, ts, "BTC")
	assert.NotEmpty(t, btc.ID)
	assert.Equal(t, "BTC coin", btc.Name)

	t.Run("Get", func(t *testing.T) {
		resp, body := makeRequest(t, ts, http.MethodGet, "/assets/"+btc.ID, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.Equal(t, btc, decodeInto[models.Asset](t, body))
	})

	t.Run("Duplicate", func(t *testing.T) {
		resp, body := makeRequest(t, ts, http.MethodPost, "/assets/", map[string]string{
			"name": "again", "short_name": "BTC", "type": "crypto",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Contains(t, decodeInto[map[string]string](t, body)["message"], "short_name")
	})

	t.Run("MissingField", func(t *testing.T) {
		resp, body := makeRequest(t, ts, http.MethodPost, "/assets/", map[string]string{"name": "x", "type": "crypto"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeInto[map[string]string](t, body)["message"], "short_name")
	})

	t.Run("MalformedBody", func(t *testing.T) {
		resp, _ := makeRequest(t, ts, http.MethodPost, "/assets/", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, body := makeRequest(t, ts, http.MethodGet, "/assets/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, map[string]string{"message": "Asset not found"}, decodeInto[map[string]string](t, body))
	})

	t.Run("InvalidID", func(t *testing.T) {
		resp, _ := makeRequest(t, ts, http.MethodGet, "/assets/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Delete", func(t *testing.T) {
		eth := createAsset(t, ts, "ETH")
		resp, body := makeRequest(t, ts, http.MethodDelete, "/assets/"+eth.ID, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, body)

		resp, _ = makeRequest(t, ts, http.MethodDelete, "/assets/"+eth.ID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAssetList(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, short := range []string{"BTC", "ETH", "SOL"} {
		createAsset(t, ts, short)
	}

	resp, body := makeRequest(t, ts, http.MethodGet, "/assets/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeInto[service.Page[models.Asset]](t, body)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Size, "default page size")
	assert.Len(t, page.Items, 2)

	raw := decodeInto[map[string]json.RawMessage](t, body)
	assert.ElementsMatch(t, []string{"items", "total", "page", "size"}, keys(raw))

	_, body = makeRequest(t, ts, http.MethodGet, "/assets/?page=2&size=2", nil)
	page = decodeInto[service.Page[models.Asset]](t, body)
	assert.Len(t, page.Items, 1)

	_, body = makeRequest(t, ts, http.MethodGet, "/assets/?short_name=ETH", nil)
	page = decodeInto[service.Page[models.Asset]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ETH", page.Items[0].ShortName)

	_, body = makeRequest(t, ts, http.MethodGet, "/assets/?sort=short_name&dir=desc&size=1", nil)
	page = decodeInto[service.Page[models.Asset]](t, body)
	assert.Equal(t, "SOL", page.Items[0].ShortName)

	_, body = makeRequest(t, ts, http.MethodGet, "/assets/?short_name=NOPE&page=5", nil)
	assert.JSONEq(t, `{"items":[],"total":0,"page":5,"size":2}`, string(body))

	for _, query := range []string{"page=0", "size=0", "page=abc", "sort=ticker", "sort=name&dir=up"} {
		resp, body := makeRequest(t, ts, http.MethodGet, "/assets/?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		assert.NotEmpty(t, decodeInto[map[string]string](t, body)["message"])
	}

	resp, body = makeRequest(t, ts, http.MethodGet, "/assets/?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Page number smaller than one not possible."}`, string(body))
}

func TestAssetPairEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	btc := createAsset(t, ts, "BTC")
	usd := createAsset(t, ts, "USD")

	resp, body := makeRequest(t, ts, http.MethodPost, "/assets/pairs/", map[string]string{
		"base_id": btc.ID, "quote_id": usd.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	pair := decodeInto[models.AssetPair](t, body)
	require.NotNil(t, pair.Base)
	assert.Equal(t, btc, *pair.Base)
	assert.Equal(t, usd, *pair.Quote)

	resp, body = makeRequest(t, ts, http.MethodGet, "/assets/pairs/"+pair.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, pair, decodeInto[models.AssetPair](t, body))

	resp, body = makeRequest(t, ts, http.MethodGet, "/assets/pairs/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeInto[service.Page[models.AssetPair]](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "USD", page.Items[0].Quote.ShortName)

	resp, _ = makeRequest(t, ts, http.MethodPost, "/assets/pairs/", map[string]string{
		"base_id": btc.ID, "quote_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// deleting a referenced asset is a server-side condition
	resp, _ = makeRequest(t, ts, http.MethodDelete, "/assets/"+usd.ID, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = makeRequest(t, ts, http.MethodGet, "/assets/pairs/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = makeRequest(t, ts, http.MethodDelete, "/assets/pairs/"+pair.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = makeRequest(t, ts, http.MethodDelete, "/assets/"+usd.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCORSAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := makeRequest(t, ts, http.MethodOptions, "/assets/", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, body := makeRequest(t, ts, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, _ = makeRequest(t, ts, http.MethodPut, "/assets/", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNewServerNeedsService(t *testing.T) {
	_, err := rest.NewServer(rest.ServerConfig{})
	assert.Error(t, err)
}

func TestGraphQLMount(t *testing.T) {
	td := test.NewSQLite(t)
	gql, err := graphql.New(td.Service, 0)
	require.NoError(t, err)
	server, err := rest.NewServer(rest.ServerConfig{
		Service: td.Service,
		Logger:  logger.NewNullLogger(),
		GraphQL: gql.SetLogger(logger.NewNullLogger()),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(server.Router)
	t.Cleanup(ts.Close)

	td.CreateAsset("Bitcoin", "BTC", "crypto")
	resp, body := makeRequest(t, ts, http.MethodPost, "/graphql", map[string]string{
		"query": "{ assets { total items { shortName } } }",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"data":{"assets":{"total":1,"items":[{"shortName":"BTC"}]}}}`, string(body))
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
