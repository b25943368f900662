package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"veresiye/internal/ledger"
	"veresiye/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := ledger.New(store.NewMemory())
	server := httptest.NewServer(NewRouter(NewHandler(svc), "*"))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTransactionFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/products", map[string]any{
		"name": "Yem", "sellingPrice": 5, "buyingPrice": 3, "stock": 20,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/api/v1/transactions", map[string]any{
		"customer": "Ahmet", "productName": "Yem", "quantity": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var txn map[string]any
	decodeBody(t, resp, &txn)
	assert.Equal(t, 50.0, txn["total"])

	// over-selling is a conflict, not a server error
	resp = postJSON(t, server.URL+"/api/v1/transactions", map[string]any{
		"customer": "Ahmet", "productName": "Yem", "quantity": 30,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/api/v1/dashboard")
	require.NoError(t, err)
	var summary map[string]any
	decodeBody(t, resp, &summary)
	assert.Equal(t, 1.0, summary["totalTransactions"])
	assert.Equal(t, 50.0, summary["totalSales"])
	assert.Equal(t, 20.0, summary["profit"])
}

func TestUnknownProductReturnsBadRequest(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/transactions", map[string]any{
		"customer": "Ahmet", "productName": "Tohum", "quantity": 1, "price": 5,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLedgerEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/ledgers", map[string]any{"name": "2024 Sezonu"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var meta map[string]any
	decodeBody(t, resp, &meta)

	resp = postJSON(t, server.URL+"/api/v1/ledgers", map[string]any{"name": "2024 sezonu"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// delete without confirmation is refused
	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/ledgers/"+meta["id"].(string), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	req, err = http.NewRequest(http.MethodDelete, server.URL+"/api/v1/ledgers/"+meta["id"].(string)+"?confirm=true", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestImportCSVEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/import/csv", map[string]any{
		"transactionsCsv": "customer,product,quantity,price\nAhmet,Yem,2,5\n",
		"productsCsv":     "product name,price,stock\nYem,5,100\n",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats map[string]any
	decodeBody(t, resp, &stats)
	assert.Equal(t, 1.0, stats["transactions"])
	assert.Equal(t, 1.0, stats["products"])

	resp = postJSON(t, server.URL+"/api/v1/import/csv", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRejectsUnknownJSONFields(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/api/v1/customers", map[string]any{
		"name": "Ahmet", "surprise": true,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
