package engine

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/matink112/TradeEngine/models"
)

// OrderBook is the matching core for a single instrument. It owns both book
// sides, the logical clock and the order-id allocator, and publishes every
// executed trade to its TradeSink.
//
// Mutations (Submit, Modify, Cancel) serialize on the write lock and commit
// atomically: all trades of one submit reach the sink before the call
// returns, and a failed validation leaves book and clock untouched. Reads
// take the read lock and may run concurrently with each other.
type OrderBook struct {
	mu sync.RWMutex

	Market string

	bids *BookSide
	asks *BookSide

	time        int64
	nextOrderID uint64

	sink TradeSink
}

// SubmitParams carries one incoming order. Quantity and Price must be
// constructed from textual decimals; Price is nil for market orders. TradeID
// is an optional client reference and defaults to the allocated order id.
// Wage is opaque and passes through to trade records unmodified.
type SubmitParams struct {
	Side     models.Side
	Type     models.OrderType
	Quantity decimal.Decimal
	Price    *decimal.Decimal
	TradeID  string
	Wage     interface{}
}

// NewOrderBook creates an empty book publishing trades to sink.
func NewOrderBook(market string, sink TradeSink) *OrderBook {
	return &OrderBook{
		Market: market,
		bids:   NewBookSide(models.SideBid),
		asks:   NewBookSide(models.SideAsk),
		sink:   sink,
	}
}

// Submit runs the incoming order against the opposite side, emits the
// resulting trades, and rests any residual when the order is a limit. The
// returned view is the resting residual, or nil when nothing rested. Market
// residual beyond available depth is silently discarded.
func (b *OrderBook) Submit(p SubmitParams) ([]TradeRecord, *models.OrderView, error) {
	if err := validateSubmit(p); err != nil {
		return nil, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.time++
	b.nextOrderID++
	orderID := b.nextOrderID

	tradeID := p.TradeID
	if tradeID == "" {
		tradeID = strconv.FormatUint(orderID, 10)
	}

	trades, residual := b.match(p, orderID, tradeID)

	if p.Type == models.OrderTypeMarket || !residual.IsPositive() {
		return trades, nil, nil
	}

	order := &models.Order{
		OrderID:   orderID,
		Timestamp: b.time,
		Quantity:  residual,
		Price:     *p.Price,
		TradeID:   tradeID,
		Wage:      p.Wage,
	}
	b.sideTree(p.Side).Insert(order)

	view := order.View(p.Side)
	return trades, &view, nil
}

// match crosses the aggressor against the opposite side while quantity
// remains and the cross predicate holds, consuming makers head-first at the
// best price. Every match is appended to the sink before Submit returns.
// Returns the trades and the aggressor's unmatched quantity.
func (b *OrderBook) match(p SubmitParams, orderID uint64, tradeID string) ([]TradeRecord, decimal.Decimal) {
	opposite := b.sideTree(p.Side.Opposite())
	quantity := p.Quantity
	trades := make([]TradeRecord, 0)

	for quantity.IsPositive() {
		level := opposite.BestLevel()
		if level == nil {
			break
		}
		if p.Type == models.OrderTypeLimit && !crosses(p.Side, *p.Price, level.Price) {
			break
		}

		head := level.Head()
		matched := decimal.Min(quantity, head.Quantity)

		var newBookQuantity *decimal.Decimal
		if head.Quantity.GreaterThan(matched) {
			remaining := head.Quantity.Sub(matched)
			newBookQuantity = &remaining
			opposite.reduce(head.OrderID, matched)
		} else {
			opposite.RemoveByID(head.OrderID)
		}

		trade := TradeRecord{
			Timestamp: b.time,
			Time:      b.time,
			Price:     level.Price,
			Quantity:  matched,
			Party1: TradeParty{
				TradeID:         head.TradeID,
				Side:            p.Side.Opposite(),
				OrderID:         head.OrderID,
				NewBookQuantity: newBookQuantity,
				Wage:            head.Wage,
			},
			Party2: TradeParty{
				TradeID:         tradeID,
				Side:            p.Side,
				OrderID:         orderID,
				NewBookQuantity: nil,
				Wage:            p.Wage,
			},
		}

		b.sink.Append(trade)
		trades = append(trades, trade)

		quantity = quantity.Sub(matched)
	}

	return trades, quantity
}

// Modify changes a resting order's quantity and/or price.
//
// A price change re-admits the order: it is removed and reinserted at the
// tail of its new level with a fresh timestamp, keeping its id. A pure
// quantity increase moves the order to the tail of its current level with a
// fresh timestamp; a pure decrease keeps position and timestamp. A modify
// never crosses the book.
func (b *OrderBook) Modify(side models.Side, orderID uint64, newQuantity, newPrice *decimal.Decimal) (models.OrderView, error) {
	if !side.Valid() {
		return models.OrderView{}, fmt.Errorf("%w: side must be bid or ask, got %q", ErrInvalidOrderType, side)
	}
	if newQuantity != nil && !newQuantity.IsPositive() {
		return models.OrderView{}, fmt.Errorf("%w: quantity must be > 0, got %s", ErrInvalidQuantity, newQuantity)
	}
	if newPrice != nil && !newPrice.IsPositive() {
		return models.OrderView{}, fmt.Errorf("%w: price must be > 0, got %s", ErrInvalidOrderType, newPrice)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tree := b.sideTree(side)
	order, exists := tree.Get(orderID)
	if !exists {
		return models.OrderView{}, fmt.Errorf("%w: order %d on side %s", ErrOrderNotFound, orderID, side)
	}

	b.time++

	if newPrice != nil && !newPrice.Equal(order.Price) {
		quantity := order.Quantity
		if newQuantity != nil {
			quantity = *newQuantity
		}

		tree.RemoveByID(orderID)
		replacement := &models.Order{
			OrderID:   orderID,
			Timestamp: b.time,
			Quantity:  quantity,
			Price:     *newPrice,
			TradeID:   order.TradeID,
			Wage:      order.Wage,
		}
		tree.Insert(replacement)
		return replacement.View(side), nil
	}

	if newQuantity != nil {
		tree.updateQuantity(orderID, *newQuantity, b.time)
	}
	return order.View(side), nil
}

// Cancel removes a resting order. No trade is emitted.
func (b *OrderBook) Cancel(side models.Side, orderID uint64) error {
	if !side.Valid() {
		return fmt.Errorf("%w: side must be bid or ask, got %q", ErrInvalidOrderType, side)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tree := b.sideTree(side)
	if _, exists := tree.Get(orderID); !exists {
		return fmt.Errorf("%w: order %d on side %s", ErrOrderNotFound, orderID, side)
	}

	b.time++
	tree.RemoveByID(orderID)
	return nil
}

// Get returns a snapshot of a single resting order.
func (b *OrderBook) Get(side models.Side, orderID uint64) (models.OrderView, error) {
	if !side.Valid() {
		return models.OrderView{}, fmt.Errorf("%w: side must be bid or ask, got %q", ErrInvalidOrderType, side)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	order, exists := b.sideTree(side).Get(orderID)
	if !exists {
		return models.OrderView{}, fmt.Errorf("%w: order %d on side %s", ErrOrderNotFound, orderID, side)
	}
	return order.View(side), nil
}

// List returns every resting order on a side in match priority: best price
// first, FIFO within each level.
func (b *OrderBook) List(side models.Side) ([]models.OrderView, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: side must be bid or ask, got %q", ErrInvalidOrderType, side)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	views := make([]models.OrderView, 0)
	b.sideTree(side).EachByPriority(func(order *models.Order) bool {
		views = append(views, order.View(side))
		return true
	})
	return views, nil
}

// Summary reads the maintained aggregates; no scan.
func (b *OrderBook) Summary() models.SummaryView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	summary := models.SummaryView{
		BidVolume: b.bids.Volume(),
		AskVolume: b.asks.Volume(),
		NumBids:   b.bids.NumOrders(),
		NumAsks:   b.asks.NumOrders(),
		Time:      b.time,
	}
	if price, ok := b.bids.BestPrice(); ok {
		summary.BestBid = &price
	}
	if price, ok := b.asks.BestPrice(); ok {
		summary.BestAsk = &price
	}
	return summary
}

// Time returns the current logical clock.
func (b *OrderBook) Time() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.time
}

func (b *OrderBook) sideTree(side models.Side) *BookSide {
	if side == models.SideBid {
		return b.bids
	}
	return b.asks
}

// crosses is the limit-order cross predicate: a bid matches at or above the
// best ask, an ask at or below the best bid.
func crosses(side models.Side, price, best decimal.Decimal) bool {
	if side == models.SideBid {
		return price.GreaterThanOrEqual(best)
	}
	return price.LessThanOrEqual(best)
}

func validateSubmit(p SubmitParams) error {
	if !p.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be > 0, got %s", ErrInvalidQuantity, p.Quantity)
	}
	if !p.Side.Valid() {
		return fmt.Errorf("%w: side must be bid or ask, got %q", ErrInvalidOrderType, p.Side)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: type must be limit or market, got %q", ErrInvalidOrderType, p.Type)
	}
	if p.Type == models.OrderTypeLimit {
		if p.Price == nil {
			return fmt.Errorf("%w: price is required for limit orders", ErrInvalidOrderType)
		}
		if !p.Price.IsPositive() {
			return fmt.Errorf("%w: price must be > 0, got %s", ErrInvalidOrderType, p.Price)
		}
	} else if p.Price != nil {
		return fmt.Errorf("%w: market orders must not carry a price", ErrInvalidOrderType)
	}
	return nil
}
