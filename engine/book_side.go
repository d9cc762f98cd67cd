package engine

import (
	"container/list"
	"fmt"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/matink112/TradeEngine/models"
)

// orderLocation ties an order to its price level and its position inside the
// level's queue, so id lookups, removals and repositions are O(1) after the
// map hit.
type orderLocation struct {
	order   *models.Order
	level   *PriceLevel
	element *list.Element
}

// BookSide is one side of the book: a btree of price levels plus an id index
// over every resting order, with side-wide volume and order-count aggregates.
type BookSide struct {
	side   models.Side
	tree   *btree.BTree
	orders map[uint64]*orderLocation
	volume decimal.Decimal
}

// NewBookSide creates an empty side. The side determines which end of the
// price tree is "best": the maximum for bids, the minimum for asks.
func NewBookSide(side models.Side) *BookSide {
	return &BookSide{
		side:   side,
		tree:   btree.New(32),
		orders: make(map[uint64]*orderLocation),
		volume: decimal.Zero,
	}
}

// Insert places an order at the tail of its price level, creating the level
// if needed, and indexes it by id. Inserting an id that is already resting is
// a programming error: the allocator never reuses ids.
func (bs *BookSide) Insert(order *models.Order) {
	if _, exists := bs.orders[order.OrderID]; exists {
		panic(InvariantViolation(fmt.Sprintf("book side %s: duplicate order id %d", bs.side, order.OrderID)))
	}

	level := bs.getOrCreateLevel(order.Price)
	element := level.Append(order)

	bs.orders[order.OrderID] = &orderLocation{
		order:   order,
		level:   level,
		element: element,
	}
	bs.volume = bs.volume.Add(order.Quantity)
}

// RemoveByID unlinks the order from its level, drops the level if it became
// empty, and removes the id index entry. Returns the removed order, or false
// when the id is not resting on this side.
func (bs *BookSide) RemoveByID(orderID uint64) (*models.Order, bool) {
	loc, exists := bs.orders[orderID]
	if !exists {
		return nil, false
	}

	loc.level.Remove(loc.element)
	if loc.level.IsEmpty() {
		bs.tree.Delete(loc.level)
	}

	delete(bs.orders, orderID)
	bs.volume = bs.volume.Sub(loc.order.Quantity)

	return loc.order, true
}

// Get looks up a resting order by id in O(1).
func (bs *BookSide) Get(orderID uint64) (*models.Order, bool) {
	loc, exists := bs.orders[orderID]
	if !exists {
		return nil, false
	}
	return loc.order, true
}

// BestLevel returns the best price level: highest price for bids, lowest for
// asks. Returns nil when the side is empty.
func (bs *BookSide) BestLevel() *PriceLevel {
	var item btree.Item
	if bs.side == models.SideBid {
		item = bs.tree.Max()
	} else {
		item = bs.tree.Min()
	}
	if item == nil {
		return nil
	}
	return item.(*PriceLevel)
}

// BestPrice returns the best resting price, or false when the side is empty.
func (bs *BookSide) BestPrice() (decimal.Decimal, bool) {
	level := bs.BestLevel()
	if level == nil {
		return decimal.Zero, false
	}
	return level.Price, true
}

// reduce consumes part of a resting order during a match, keeping the order
// in place. The caller guarantees by < order quantity.
func (bs *BookSide) reduce(orderID uint64, by decimal.Decimal) {
	loc, exists := bs.orders[orderID]
	if !exists {
		panic(InvariantViolation(fmt.Sprintf("book side %s: reduce of unknown order id %d", bs.side, orderID)))
	}

	loc.order.Quantity = loc.order.Quantity.Sub(by)
	loc.level.Volume = loc.level.Volume.Sub(by)
	bs.volume = bs.volume.Sub(by)
}

// updateQuantity applies a quantity-only modify. Increases lose time
// priority: the order moves to the tail of its level and takes the supplied
// timestamp. Decreases keep position and timestamp.
func (bs *BookSide) updateQuantity(orderID uint64, newQuantity decimal.Decimal, timestamp int64) {
	loc, exists := bs.orders[orderID]
	if !exists {
		panic(InvariantViolation(fmt.Sprintf("book side %s: update of unknown order id %d", bs.side, orderID)))
	}

	delta := newQuantity.Sub(loc.order.Quantity)
	if delta.IsZero() {
		return
	}

	if delta.IsPositive() {
		loc.level.MoveToTail(loc.element)
		loc.order.Timestamp = timestamp
	}

	loc.order.Quantity = newQuantity
	loc.level.Volume = loc.level.Volume.Add(delta)
	bs.volume = bs.volume.Add(delta)
}

// EachByPriority visits resting orders in match priority: best price first,
// FIFO within each level. Iteration stops when fn returns false.
func (bs *BookSide) EachByPriority(fn func(order *models.Order) bool) {
	iterator := func(item btree.Item) bool {
		level := item.(*PriceLevel)
		stopped := false
		level.Each(func(order *models.Order) bool {
			if !fn(order) {
				stopped = true
				return false
			}
			return true
		})
		return !stopped
	}

	if bs.side == models.SideBid {
		bs.tree.Descend(iterator)
	} else {
		bs.tree.Ascend(iterator)
	}
}

// Volume is the sum of quantities across every resting order on this side.
func (bs *BookSide) Volume() decimal.Decimal {
	return bs.volume
}

// NumOrders is the count of resting orders on this side.
func (bs *BookSide) NumOrders() int {
	return len(bs.orders)
}

// Depth is the number of distinct price levels.
func (bs *BookSide) Depth() int {
	return bs.tree.Len()
}

func (bs *BookSide) getOrCreateLevel(price decimal.Decimal) *PriceLevel {
	search := &PriceLevel{Price: price}
	if item := bs.tree.Get(search); item != nil {
		return item.(*PriceLevel)
	}

	level := NewPriceLevel(price)
	bs.tree.ReplaceOrInsert(level)
	return level
}
