package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matink112/TradeEngine/engine"
	"github.com/matink112/TradeEngine/models"
	"github.com/matink112/TradeEngine/tradelog"
)

func newTestRouter() *Router {
	tradeLog := tradelog.NewLog()
	book := engine.NewOrderBook("TEST/PAIR", tradeLog)
	return NewRouter("TEST/PAIR", book, tradeLog, nil)
}

func doRequest(t *testing.T, router *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func submitOrder(t *testing.T, router *Router, body string) SubmitResult {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var result SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestSubmitOrderRest(t *testing.T) {
	router := newTestRouter()

	result := submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	assert.Empty(t, result.Trades)
	require.NotNil(t, result.Order)
	assert.Equal(t, models.SideBid, result.Order.Side)
	assert.Equal(t, "5", result.Order.Quantity.String())
	assert.Equal(t, "100", result.Order.Price.String())
}

func TestSubmitOrderCrossEmitsTrades(t *testing.T) {
	router := newTestRouter()

	submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	result := submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"2","price":"100"}`)

	require.Len(t, result.Trades, 1)
	assert.Nil(t, result.Order, "fully filled taker does not rest")
	assert.Equal(t, "100", result.Trades[0].Price.String())
	assert.Equal(t, "2", result.Trades[0].Quantity.String())
	require.NotNil(t, result.Trades[0].Party1.NewBookQuantity)
	assert.Equal(t, "3", result.Trades[0].Party1.NewBookQuantity.String())
}

func TestSubmitOrderValidationFailures(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"zero quantity", `{"side":"bid","type":"limit","quantity":"0","price":"100"}`},
		{"bad side", `{"side":"buy","type":"limit","quantity":"1","price":"100"}`},
		{"limit without price", `{"side":"bid","type":"limit","quantity":"1"}`},
		{"market with price", `{"side":"bid","type":"market","quantity":"1","price":"100"}`},
		{"malformed json", `{"side":`},
		{"unknown field", `{"side":"bid","type":"limit","quantity":"1","price":"100","bogus":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListOrders(t *testing.T) {
	router := newTestRouter()

	submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"1","price":"101"}`)
	submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"2","price":"100"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/orders/ask", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "100", orders[0].Price.String(), "asks listed best price first")

	rec = doRequest(t, router, http.MethodGet, "/api/orders/sideways", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	router := newTestRouter()

	result := submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	orderID := result.Order.OrderID

	rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/orders/bid/%d", orderID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, orderID, view.OrderID)

	rec = doRequest(t, router, http.MethodGet, "/api/orders/bid/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/orders/bid/notanumber", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModifyOrder(t *testing.T) {
	router := newTestRouter()

	result := submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	orderID := result.Order.OrderID

	rec := doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/orders/bid/%d", orderID), `{"price":"99"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "99", view.Price.String())
	assert.Equal(t, "5", view.Quantity.String())

	rec = doRequest(t, router, http.MethodPatch, fmt.Sprintf("/api/orders/bid/%d", orderID), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty modify rejected")

	rec = doRequest(t, router, http.MethodPatch, "/api/orders/bid/9999", `{"quantity":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	router := newTestRouter()

	result := submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"5","price":"100"}`)
	orderID := result.Order.OrderID

	rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/orders/ask/%d", orderID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/orders/ask/%d", orderID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter()

	submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"3","price":"101"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.SummaryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.NotNil(t, summary.BestBid)
	require.NotNil(t, summary.BestAsk)
	assert.Equal(t, "100", summary.BestBid.String())
	assert.Equal(t, "101", summary.BestAsk.String())
	assert.Equal(t, 1, summary.NumBids)
	assert.Equal(t, 1, summary.NumAsks)
}

func TestGetTrades(t *testing.T) {
	router := newTestRouter()

	submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"2","price":"100"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/trades?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Trades []engine.TradeRecord `json:"trades"`
		Count  int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
	require.Len(t, payload.Trades, 1)
	assert.Equal(t, "100", payload.Trades[0].Price.String())

	rec = doRequest(t, router, http.MethodGet, "/api/trades?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeRecordWireFormat(t *testing.T) {
	router := newTestRouter()

	submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100","trade_id":"maker-1"}`)
	result := submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"2","price":"100","trade_id":"taker-1"}`)
	require.Len(t, result.Trades, 1)

	raw, err := json.Marshal(result.Trades[0])
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &wire))

	assert.Equal(t, wire["timestamp"], wire["time"], "time duplicates timestamp on the wire")

	party1 := wire["party1"].(map[string]interface{})
	assert.Equal(t, "maker-1", party1["trade_id"])
	assert.Equal(t, "bid", party1["side"])
	assert.Equal(t, "3", party1["new_book_quantity"])

	party2 := wire["party2"].(map[string]interface{})
	assert.Equal(t, "taker-1", party2["trade_id"])
	assert.Equal(t, "ask", party2["side"])
	assert.Nil(t, party2["new_book_quantity"])
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter()
	rec := doRequest(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOHLCEndpoint(t *testing.T) {
	router := newTestRouter()

	submitOrder(t, router, `{"side":"bid","type":"limit","quantity":"5","price":"100"}`)
	submitOrder(t, router, `{"side":"ask","type":"limit","quantity":"2","price":"100"}`)

	rec := doRequest(t, router, http.MethodGet, "/api/trades/ohlc?interval=1h", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/trades/ohlc?interval=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/trades/ohlc?interval=1s&from=2020-01-01T00:00:00Z&to=2024-01-01T00:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "bucket explosion rejected")
}

func TestMarketInfoEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/api/trades/info", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/trades/info?detail=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCorrelationIDHeader(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Correlation-ID", "my-trace")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "my-trace", rec.Header().Get("X-Correlation-ID"))
}
