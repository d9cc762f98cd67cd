package engine

import (
	"container/list"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/matink112/TradeEngine/models"
)

// PriceLevel is the FIFO queue of orders resting at one price. The head is
// the oldest still-resting order. Volume is kept equal to the sum of member
// quantities; an empty level must not remain in a book side.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders *list.List
	Volume decimal.Decimal
}

// NewPriceLevel creates an empty price level
func NewPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
		Volume: decimal.Zero,
	}
}

// Append attaches an order at the tail of the queue and returns the direct
// handle used for O(1) removal and repositioning.
func (pl *PriceLevel) Append(order *models.Order) *list.Element {
	element := pl.Orders.PushBack(order)
	pl.Volume = pl.Volume.Add(order.Quantity)
	return element
}

// Remove unlinks an order given its direct handle. The handle must refer to
// a current member; passing anything else is a programming error.
func (pl *PriceLevel) Remove(element *list.Element) {
	order := element.Value.(*models.Order)
	pl.Volume = pl.Volume.Sub(order.Quantity)
	pl.Orders.Remove(element)
}

// MoveToTail re-appends the order in place, preserving volume and length.
// Used when a resting order's quantity is increased and it loses priority.
func (pl *PriceLevel) MoveToTail(element *list.Element) {
	pl.Orders.MoveToBack(element)
}

// Head returns the oldest resting order, or nil when the level is empty.
func (pl *PriceLevel) Head() *models.Order {
	front := pl.Orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*models.Order)
}

func (pl *PriceLevel) Len() int {
	return pl.Orders.Len()
}

func (pl *PriceLevel) IsEmpty() bool {
	return pl.Orders.Len() == 0
}

// Each iterates members head-first. Iteration stops when fn returns false.
func (pl *PriceLevel) Each(fn func(order *models.Order) bool) {
	for e := pl.Orders.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(*models.Order)) {
			return
		}
	}
}

// Less orders levels by numeric price so the btree can serve best-price
// lookups from either end.
func (pl *PriceLevel) Less(than btree.Item) bool {
	other := than.(*PriceLevel)
	return pl.Price.LessThan(other.Price)
}
