package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/matink112/TradeEngine/engine"
	"github.com/matink112/TradeEngine/logging"
	"github.com/matink112/TradeEngine/metrics"
	"github.com/matink112/TradeEngine/models"
	"github.com/matink112/TradeEngine/validation"
	"github.com/matink112/TradeEngine/websocket"
)

// SubmitResult is the POST /api/orders response body.
type SubmitResult struct {
	Trades []engine.TradeRecord `json:"trades"`
	Order  *models.OrderView    `json:"order"`
}

// SubmitOrder handles POST /api/orders
func (rt *Router) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	correlationID := GetCorrelationID(r)

	var req models.SubmitOrderRequest
	if !rt.decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidateSubmit(&req); err != nil {
		metrics.RecordOrderRejected(rt.market, "validation")
		logging.LogOrderRejected(correlationID, rt.market, err.Error())
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	trades, order, err := rt.book.Submit(engine.SubmitParams{
		Side:     req.Side,
		Type:     req.Type,
		Quantity: req.Quantity,
		Price:    req.Price,
		TradeID:  req.TradeID,
		Wage:     req.Wage,
	})
	if err != nil {
		metrics.RecordOrderRejected(rt.market, rejectReason(err))
		logging.LogOrderRejected(correlationID, rt.market, err.Error())
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.RecordOrderReceived(rt.market, string(req.Side), string(req.Type))
	metrics.RecordSubmitLatency(rt.market, string(req.Type), time.Since(started).Seconds())

	price := ""
	if req.Price != nil {
		price = req.Price.String()
	}
	orderID := uint64(0)
	if order != nil {
		orderID = order.OrderID
	} else if len(trades) > 0 {
		orderID = trades[0].Party2.OrderID
	}
	logging.LogOrderReceived(correlationID, orderID, rt.market, string(req.Side), string(req.Type), price, req.Quantity.String())

	for _, trade := range trades {
		quantity, _ := trade.Quantity.Float64()
		metrics.RecordTrade(rt.market, quantity)
		logging.LogTradeExecuted(correlationID, rt.market, trade.Party1.OrderID, trade.Party2.OrderID, trade.Price.String(), trade.Quantity.String())
	}
	rt.publish(trades)

	respondJSON(w, http.StatusCreated, SubmitResult{Trades: trades, Order: order})
}

// ListOrders handles GET /api/orders/{side}
func (rt *Router) ListOrders(w http.ResponseWriter, r *http.Request) {
	side := models.Side(mux.Vars(r)["side"])

	orders, err := rt.book.List(side)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/{side}/{order_id}
func (rt *Router) GetOrder(w http.ResponseWriter, r *http.Request) {
	side, orderID, ok := rt.orderPath(w, r)
	if !ok {
		return
	}

	order, err := rt.book.Get(side, orderID)
	if err != nil {
		rt.respondBookError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ModifyOrder handles PATCH /api/orders/{side}/{order_id}
func (rt *Router) ModifyOrder(w http.ResponseWriter, r *http.Request) {
	side, orderID, ok := rt.orderPath(w, r)
	if !ok {
		return
	}

	var req models.ModifyOrderRequest
	if !rt.decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidateModify(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := rt.book.Modify(side, orderID, req.Quantity, req.Price)
	if err != nil {
		rt.respondBookError(w, err)
		return
	}

	logging.LogOrderModified(GetCorrelationID(r), orderID, rt.market, string(side))
	rt.publishSummary()
	respondJSON(w, http.StatusOK, order)
}

// CancelOrder handles DELETE /api/orders/{side}/{order_id}
func (rt *Router) CancelOrder(w http.ResponseWriter, r *http.Request) {
	side, orderID, ok := rt.orderPath(w, r)
	if !ok {
		return
	}

	if err := rt.book.Cancel(side, orderID); err != nil {
		rt.respondBookError(w, err)
		return
	}

	metrics.RecordOrderCancelled(rt.market, string(side))
	logging.LogOrderCancelled(GetCorrelationID(r), orderID, rt.market, string(side))
	rt.publishSummary()
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary handles GET /api/summary
func (rt *Router) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, rt.book.Summary())
}

// GetTrades handles GET /api/trades?limit=50
func (rt *Router) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > 1000 {
			limit = 1000
		}
	}

	trades := rt.tradeLog.Tail(limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// GetOHLC handles GET /api/trades/ohlc?interval=1h&from=...&to=...
func (rt *Router) GetOHLC(w http.ResponseWriter, r *http.Request) {
	interval := time.Hour
	if v := r.URL.Query().Get("interval"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid interval")
			return
		}
		interval = parsed
	}

	to := time.Now()
	from := to.Add(-24 * time.Hour)
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		to = parsed
	}
	if !to.After(from) {
		respondError(w, http.StatusBadRequest, "to must be after from")
		return
	}
	if int64(to.Sub(from)/interval) > 10000 {
		respondError(w, http.StatusBadRequest, "too many buckets requested")
		return
	}

	respondJSON(w, http.StatusOK, rt.analyzer.OHLC(from, to, interval))
}

// GetMarketInfo handles GET /api/trades/info
func (rt *Router) GetMarketInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("detail") == "true" {
		respondJSON(w, http.StatusOK, rt.analyzer.DayInfo(rt.book.Summary()))
		return
	}
	respondJSON(w, http.StatusOK, rt.analyzer.ShortInfo())
}

// GetKlineCSV handles GET /api/trades/kline.csv
func (rt *Router) GetKlineCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	if err := rt.analyzer.WriteKlineCSV(w); err != nil {
		logging.GetLogger().WithField("error", err.Error()).Error("Kline CSV write failed")
	}
}

// HealthCheck handles GET /healthz
func (rt *Router) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleWebSocket handles the GET /stream upgrade.
func (rt *Router) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rt.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.GetLogger().WithField("error", err.Error()).Warn("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(rt.hub, conn)
	rt.hub.Register(client)
	client.Start()
}

// decodeBody enforces the body-size cap and strict JSON decoding. Returns
// false after writing the error response.
func (rt *Router) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxRequestBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return false
	}
	return true
}

func (rt *Router) orderPath(w http.ResponseWriter, r *http.Request) (models.Side, uint64, bool) {
	vars := mux.Vars(r)
	side := models.Side(vars["side"])

	orderID, err := strconv.ParseUint(vars["order_id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order_id")
		return "", 0, false
	}
	return side, orderID, true
}

func (rt *Router) respondBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidQuantity), errors.Is(err, engine.ErrInvalidOrderType):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidQuantity):
		return "quantity"
	case errors.Is(err, engine.ErrInvalidOrderType):
		return "order_type"
	default:
		return "other"
	}
}

// publish streams executed trades and the fresh book summary, and refreshes
// the book gauges. Called after every successful submit; modify and cancel
// call publishSummary directly.
func (rt *Router) publish(trades []engine.TradeRecord) {
	for i := range trades {
		trade := &trades[i]
		rt.hub.BroadcastTrade(&websocket.TradeMessage{
			Market:        rt.market,
			Time:          trade.Time,
			Price:         trade.Price,
			Quantity:      trade.Quantity,
			MakerOrderID:  trade.Party1.OrderID,
			TakerOrderID:  trade.Party2.OrderID,
			MakerSide:     trade.Party1.Side,
			TakerSide:     trade.Party2.Side,
			MakerResidual: trade.Party1.NewBookQuantity,
		})
	}
	rt.publishSummary()
}

func (rt *Router) publishSummary() {
	summary := rt.book.Summary()
	rt.hub.BroadcastSummary(&websocket.SummaryMessage{Market: rt.market, Summary: summary})

	bestBid, bestAsk := 0.0, 0.0
	if summary.BestBid != nil {
		bestBid, _ = summary.BestBid.Float64()
	}
	if summary.BestAsk != nil {
		bestAsk, _ = summary.BestAsk.Float64()
	}
	metrics.UpdateBookGauges(rt.market, summary.NumBids, summary.NumAsks, bestBid, bestAsk)
}
