package engine

import (
	"github.com/shopspring/decimal"

	"github.com/matink112/TradeEngine/models"
)

// TradeParty identifies one side of an executed trade. Party1 is the resting
// maker; its NewBookQuantity is the residual left in the book after the
// match, or nil when it was fully consumed. Party2 is the aggressing taker
// and always carries a nil NewBookQuantity.
type TradeParty struct {
	TradeID         string           `json:"trade_id"`
	Side            models.Side      `json:"side"`
	OrderID         uint64           `json:"order_id"`
	NewBookQuantity *decimal.Decimal `json:"new_book_quantity"`
	Wage            interface{}      `json:"wage"`
}

// TradeRecord is emitted once per match. Price is the maker's resting price.
// Time duplicates Timestamp on the wire.
type TradeRecord struct {
	Timestamp int64           `json:"timestamp"`
	Time      int64           `json:"time"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Party1    TradeParty      `json:"party1"`
	Party2    TradeParty      `json:"party2"`
}

// TradeSink receives every trade the book executes, in emission order: match
// order within a submit, submit order across time. Implementations must not
// reorder, drop, or coalesce records.
type TradeSink interface {
	Append(trade TradeRecord)
	Tail(n int) []TradeRecord
}
