package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matink112/TradeEngine/models"
)

func newSideOrder(id uint64, price, quantity string) *models.Order {
	return &models.Order{
		OrderID:  id,
		Price:    dec(price),
		Quantity: dec(quantity),
	}
}

func TestBookSideInsertAndLookup(t *testing.T) {
	side := NewBookSide(models.SideBid)

	side.Insert(newSideOrder(1, "100", "5"))
	side.Insert(newSideOrder(2, "101", "3"))

	assert.Equal(t, 2, side.NumOrders())
	assert.Equal(t, 2, side.Depth())
	assert.True(t, side.Volume().Equal(dec("8")))

	order, ok := side.Get(1)
	require.True(t, ok)
	assert.True(t, order.Price.Equal(dec("100")))

	_, ok = side.Get(99)
	assert.False(t, ok)
}

func TestBookSideBestPriceByDirection(t *testing.T) {
	bids := NewBookSide(models.SideBid)
	asks := NewBookSide(models.SideAsk)

	for i, price := range []string{"100", "99", "101"} {
		bids.Insert(newSideOrder(uint64(i+1), price, "1"))
		asks.Insert(newSideOrder(uint64(i+1), price, "1"))
	}

	bestBid, ok := bids.BestPrice()
	require.True(t, ok)
	assert.True(t, bestBid.Equal(dec("101")), "best bid is the max price")

	bestAsk, ok := asks.BestPrice()
	require.True(t, ok)
	assert.True(t, bestAsk.Equal(dec("99")), "best ask is the min price")
}

func TestBookSideOrdersNumericallyNotTextually(t *testing.T) {
	asks := NewBookSide(models.SideAsk)

	asks.Insert(newSideOrder(1, "10", "1"))
	asks.Insert(newSideOrder(2, "9", "1"))
	asks.Insert(newSideOrder(3, "10.5", "1"))

	best, ok := asks.BestPrice()
	require.True(t, ok)
	assert.True(t, best.Equal(dec("9")), `"9" must sort below "10" numerically`)
}

func TestBookSideRemoveCollapsesEmptyLevel(t *testing.T) {
	side := NewBookSide(models.SideAsk)

	side.Insert(newSideOrder(1, "100", "5"))
	side.Insert(newSideOrder(2, "100", "3"))
	side.Insert(newSideOrder(3, "101", "2"))

	removed, ok := side.RemoveByID(3)
	require.True(t, ok)
	assert.Equal(t, uint64(3), removed.OrderID)
	assert.Equal(t, 1, side.Depth(), "level 101 should be gone")

	side.RemoveByID(1)
	assert.Equal(t, 1, side.Depth(), "level 100 still has order 2")

	side.RemoveByID(2)
	assert.Equal(t, 0, side.Depth())
	assert.Equal(t, 0, side.NumOrders())
	assert.True(t, side.Volume().IsZero())
}

func TestBookSideRemoveUnknownID(t *testing.T) {
	side := NewBookSide(models.SideBid)
	_, ok := side.RemoveByID(42)
	assert.False(t, ok)
}

func TestBookSideDuplicateInsertPanics(t *testing.T) {
	side := NewBookSide(models.SideBid)
	side.Insert(newSideOrder(1, "100", "5"))

	defer func() {
		rec := recover()
		require.NotNil(t, rec, "duplicate insert must panic")
		_, ok := rec.(InvariantViolation)
		assert.True(t, ok, "panic payload must mark an invariant violation, got %T", rec)
	}()
	side.Insert(newSideOrder(1, "101", "1"))
}

func TestBookSideEachByPriority(t *testing.T) {
	bids := NewBookSide(models.SideBid)
	bids.Insert(newSideOrder(1, "100", "1"))
	bids.Insert(newSideOrder(2, "102", "1"))
	bids.Insert(newSideOrder(3, "100", "1"))
	bids.Insert(newSideOrder(4, "101", "1"))

	var ids []uint64
	bids.EachByPriority(func(order *models.Order) bool {
		ids = append(ids, order.OrderID)
		return true
	})
	assert.Equal(t, []uint64{2, 4, 1, 3}, ids, "bids descend by price, FIFO within price")

	asks := NewBookSide(models.SideAsk)
	asks.Insert(newSideOrder(1, "100", "1"))
	asks.Insert(newSideOrder(2, "102", "1"))
	asks.Insert(newSideOrder(3, "100", "1"))

	ids = nil
	asks.EachByPriority(func(order *models.Order) bool {
		ids = append(ids, order.OrderID)
		return true
	})
	assert.Equal(t, []uint64{1, 3, 2}, ids, "asks ascend by price, FIFO within price")
}

func TestBookSideUpdateQuantity(t *testing.T) {
	side := NewBookSide(models.SideBid)
	side.Insert(newSideOrder(1, "100", "5"))
	side.Insert(newSideOrder(2, "100", "3"))

	// Decrease keeps position and timestamp.
	side.updateQuantity(1, dec("4"), 10)
	order, _ := side.Get(1)
	assert.True(t, order.Quantity.Equal(dec("4")))
	assert.Equal(t, int64(0), order.Timestamp)
	assert.True(t, side.Volume().Equal(dec("7")))

	var ids []uint64
	side.EachByPriority(func(o *models.Order) bool {
		ids = append(ids, o.OrderID)
		return true
	})
	assert.Equal(t, []uint64{1, 2}, ids, "decrease preserves priority")

	// Increase moves to tail and restamps.
	side.updateQuantity(1, dec("6"), 11)
	order, _ = side.Get(1)
	assert.True(t, order.Quantity.Equal(dec("6")))
	assert.Equal(t, int64(11), order.Timestamp)
	assert.True(t, side.Volume().Equal(dec("9")))

	ids = nil
	side.EachByPriority(func(o *models.Order) bool {
		ids = append(ids, o.OrderID)
		return true
	})
	assert.Equal(t, []uint64{2, 1}, ids, "increase loses priority")
}
