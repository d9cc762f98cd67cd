package models

import (
	"github.com/shopspring/decimal"
)

// Side represents the side of an order (bid or ask)
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Valid reports whether the side is one of the two allowed values.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// OrderType represents the type of order (limit or market)
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// Valid reports whether the order type is one of the two allowed values.
func (t OrderType) Valid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

// Order is a single resting order. It is owned by exactly one price-level
// queue and referenced from exactly one book side's id index; only those
// owners mutate Quantity, Price and Timestamp. OrderID never changes after
// admission.
type Order struct {
	OrderID   uint64          `json:"order_id"`
	Timestamp int64           `json:"timestamp"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	TradeID   string          `json:"trade_id"`
	Wage      interface{}     `json:"wage"`
}

// OrderView is the read-only representation of an order crossing the API
// boundary.
type OrderView struct {
	OrderID   uint64          `json:"order_id"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
	TradeID   string          `json:"trade_id"`
	Wage      interface{}     `json:"wage"`
}

// View returns a detached snapshot of the order for the given side.
func (o *Order) View(side Side) OrderView {
	return OrderView{
		OrderID:   o.OrderID,
		Side:      side,
		Quantity:  o.Quantity,
		Price:     o.Price,
		Timestamp: o.Timestamp,
		TradeID:   o.TradeID,
		Wage:      o.Wage,
	}
}
