package websocket

import (
	"github.com/shopspring/decimal"

	"github.com/matink112/TradeEngine/models"
)

type Message struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// TradeMessage is the streamed form of one executed trade.
type TradeMessage struct {
	Market        string           `json:"market"`
	Time          int64            `json:"time"`
	Price         decimal.Decimal  `json:"price"`
	Quantity      decimal.Decimal  `json:"quantity"`
	MakerOrderID  uint64           `json:"maker_order_id"`
	TakerOrderID  uint64           `json:"taker_order_id"`
	MakerSide     models.Side      `json:"maker_side"`
	TakerSide     models.Side      `json:"taker_side"`
	MakerResidual *decimal.Decimal `json:"maker_residual"`
}

// SummaryMessage is the streamed book summary sent after every mutation.
type SummaryMessage struct {
	Market  string             `json:"market"`
	Summary models.SummaryView `json:"summary"`
}
