package models

import (
	"github.com/shopspring/decimal"
)

// SubmitOrderRequest is the POST /api/orders payload.
//
// Price is required for limit orders and must be absent for market orders;
// that cross-field rule is enforced in the validation package because the
// tags cannot express it.
type SubmitOrderRequest struct {
	Side     Side             `json:"side" validate:"required,oneof=bid ask"`
	Type     OrderType        `json:"type" validate:"required,oneof=limit market"`
	Quantity decimal.Decimal  `json:"quantity" validate:"required"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	TradeID  string           `json:"trade_id,omitempty" validate:"omitempty,max=64"`
	Wage     interface{}      `json:"wage,omitempty"`
}

// ModifyOrderRequest is the PATCH /api/orders/{side}/{order_id} payload.
// At least one of quantity/price must be present.
type ModifyOrderRequest struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}
