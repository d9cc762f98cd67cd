package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counter: Total orders received
	OrdersReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_received_total",
			Help: "Total number of orders accepted by the book",
		},
		[]string{"market", "side", "type"},
	)

	// Counter: Total orders rejected
	OrdersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_rejected_total",
			Help: "Total number of orders rejected by validation",
		},
		[]string{"market", "reason"},
	)

	// Counter: Total orders cancelled
	OrdersCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Total number of orders cancelled",
		},
		[]string{"market", "side"},
	)

	// Counter: Total trades executed
	TradesExecutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trades_executed_total",
			Help: "Total number of trades executed",
		},
		[]string{"market"},
	)

	// Counter: Total volume traded
	TradedVolumeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traded_volume_total",
			Help: "Total volume traded",
		},
		[]string{"market"},
	)

	// Histogram: Submit processing latency
	SubmitLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submit_latency_seconds",
			Help:    "Time taken to process a submit from receipt to response",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		},
		[]string{"market", "type"},
	)

	// Gauge: Resting order counts per side
	RestingOrders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resting_orders",
			Help: "Current number of resting orders",
		},
		[]string{"market", "side"},
	)

	// Gauge: Best bid/ask prices
	BestBidPrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "best_bid_price",
			Help: "Current best bid price",
		},
		[]string{"market"},
	)

	BestAskPrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "best_ask_price",
			Help: "Current best ask price",
		},
		[]string{"market"},
	)
)

// RecordOrderReceived increments the orders_received_total counter
func RecordOrderReceived(market, side, orderType string) {
	OrdersReceivedTotal.WithLabelValues(market, side, orderType).Inc()
}

// RecordOrderRejected increments the orders_rejected_total counter
func RecordOrderRejected(market, reason string) {
	OrdersRejectedTotal.WithLabelValues(market, reason).Inc()
}

// RecordOrderCancelled increments the orders_cancelled_total counter
func RecordOrderCancelled(market, side string) {
	OrdersCancelledTotal.WithLabelValues(market, side).Inc()
}

// RecordTrade records one executed trade
func RecordTrade(market string, quantity float64) {
	TradesExecutedTotal.WithLabelValues(market).Inc()
	TradedVolumeTotal.WithLabelValues(market).Add(quantity)
}

// RecordSubmitLatency records submit processing time
func RecordSubmitLatency(market, orderType string, seconds float64) {
	SubmitLatencySeconds.WithLabelValues(market, orderType).Observe(seconds)
}

// UpdateBookGauges refreshes depth and best-price gauges after a mutation
func UpdateBookGauges(market string, numBids, numAsks int, bestBid, bestAsk float64) {
	RestingOrders.WithLabelValues(market, "bid").Set(float64(numBids))
	RestingOrders.WithLabelValues(market, "ask").Set(float64(numAsks))
	if bestBid > 0 {
		BestBidPrice.WithLabelValues(market).Set(bestBid)
	}
	if bestAsk > 0 {
		BestAskPrice.WithLabelValues(market).Set(bestAsk)
	}
}
