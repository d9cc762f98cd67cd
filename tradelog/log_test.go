package tradelog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matink112/TradeEngine/engine"
	"github.com/matink112/TradeEngine/models"
)

func record(timestamp int64, price, quantity string) engine.TradeRecord {
	return engine.TradeRecord{
		Timestamp: timestamp,
		Time:      timestamp,
		Price:     decimal.RequireFromString(price),
		Quantity:  decimal.RequireFromString(quantity),
		Party1:    engine.TradeParty{Side: models.SideBid, OrderID: 1},
		Party2:    engine.TradeParty{Side: models.SideAsk, OrderID: 2},
	}
}

func TestLogStartsEmpty(t *testing.T) {
	log := NewLog()
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Tail(10))
	assert.Empty(t, log.Entries())
}

func TestLogPreservesAppendOrder(t *testing.T) {
	log := NewLog()

	for i := int64(1); i <= 5; i++ {
		log.Append(record(i, "10", "1"))
	}

	require.Equal(t, 5, log.Len())
	entries := log.Entries()
	for i, entry := range entries {
		assert.Equal(t, int64(i+1), entry.Timestamp, "entries keep emission order")
	}
}

func TestLogTail(t *testing.T) {
	log := NewLog()
	for i := int64(1); i <= 5; i++ {
		log.Append(record(i, "10", "1"))
	}

	tail := log.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, int64(4), tail[0].Timestamp)
	assert.Equal(t, int64(5), tail[1].Timestamp)

	assert.Len(t, log.Tail(100), 5, "tail larger than log returns everything")
	assert.Empty(t, log.Tail(0))
	assert.Empty(t, log.Tail(-1))
}

func TestLogStampsEntries(t *testing.T) {
	log := NewLog()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	log.SetNowFunc(func() time.Time { return now })

	log.Append(record(1, "10", "1"))

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].RecordedAt.Equal(now))
}

func TestLogEntriesReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Append(record(1, "10", "1"))

	entries := log.Entries()
	entries[0].Timestamp = 99

	assert.Equal(t, int64(1), log.Entries()[0].Timestamp)
}
