package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	gorilla_ws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matink112/TradeEngine/analytics"
	"github.com/matink112/TradeEngine/engine"
	"github.com/matink112/TradeEngine/ratelimit"
	"github.com/matink112/TradeEngine/tradelog"
	"github.com/matink112/TradeEngine/websocket"
)

// Router holds the HTTP router and all handlers
type Router struct {
	router   *mux.Router
	market   string
	book     *engine.OrderBook
	tradeLog *tradelog.Log
	analyzer *analytics.Analyzer
	hub      *websocket.Hub
	upgrader gorilla_ws.Upgrader
	limiter  *ratelimit.Limiter
}

// NewRouter creates a router serving the given book and trade log. The hub's
// Run loop is started here.
func NewRouter(market string, book *engine.OrderBook, tradeLog *tradelog.Log, limiter *ratelimit.Limiter) *Router {
	hub := websocket.NewHub()
	go hub.Run()

	rt := &Router{
		router:   mux.NewRouter(),
		market:   market,
		book:     book,
		tradeLog: tradeLog,
		analyzer: analytics.NewAnalyzer(tradeLog),
		hub:      hub,
		upgrader: gorilla_ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		limiter: limiter,
	}

	rt.setupRoutes()
	return rt
}

func (rt *Router) setupRoutes() {
	rt.router.Use(middleware.Recoverer)
	rt.router.Use(correlationIDMiddleware)
	rt.router.Use(abortOnInvariantViolation)
	if rt.limiter != nil {
		rt.router.Use(rt.limiter.Middleware)
	}

	api := rt.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/orders", rt.SubmitOrder).Methods("POST")
	api.HandleFunc("/orders/{side}", rt.ListOrders).Methods("GET")
	api.HandleFunc("/orders/{side}/{order_id}", rt.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{side}/{order_id}", rt.ModifyOrder).Methods("PATCH")
	api.HandleFunc("/orders/{side}/{order_id}", rt.CancelOrder).Methods("DELETE")
	api.HandleFunc("/summary", rt.GetSummary).Methods("GET")
	api.HandleFunc("/trades", rt.GetTrades).Methods("GET")
	api.HandleFunc("/trades/ohlc", rt.GetOHLC).Methods("GET")
	api.HandleFunc("/trades/info", rt.GetMarketInfo).Methods("GET")
	api.HandleFunc("/trades/kline.csv", rt.GetKlineCSV).Methods("GET")

	rt.router.HandleFunc("/stream", rt.HandleWebSocket).Methods("GET")
	rt.router.HandleFunc("/healthz", rt.HealthCheck).Methods("GET")
	rt.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// ServeHTTP implements http.Handler interface
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.router.ServeHTTP(w, r)
}

// Hub returns the WebSocket hub.
func (rt *Router) Hub() *websocket.Hub {
	return rt.hub
}
