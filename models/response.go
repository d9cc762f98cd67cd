package models

import (
	"github.com/shopspring/decimal"
)

// SummaryView mirrors OrderBook.Summary on the wire. Best prices are null
// when the side is empty.
type SummaryView struct {
	BestBid   *decimal.Decimal `json:"best_bid"`
	BestAsk   *decimal.Decimal `json:"best_ask"`
	BidVolume decimal.Decimal  `json:"bid_volume"`
	AskVolume decimal.Decimal  `json:"ask_volume"`
	NumBids   int              `json:"num_bids"`
	NumAsks   int              `json:"num_asks"`
	Time      int64            `json:"time"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
