package tradelog

import (
	"sync"
	"time"

	"github.com/matink112/TradeEngine/engine"
)

// Entry is one appended trade plus the wall-clock instant it was recorded.
// The record's own timestamp is the book's logical clock; analytics buckets
// on the wall clock.
type Entry struct {
	engine.TradeRecord
	RecordedAt time.Time
}

// Log is the default TradeSink: an in-memory append-only log that preserves
// emission order and never reorders, drops, or coalesces. It starts empty.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewLog creates an empty trade log.
func NewLog() *Log {
	return &Log{
		entries: make([]Entry, 0),
		now:     time.Now,
	}
}

// Append records a trade at the current wall time. Implements
// engine.TradeSink.
func (l *Log) Append(trade engine.TradeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{TradeRecord: trade, RecordedAt: l.now()})
}

// Tail returns the most recent n trades in append order. Implements
// engine.TradeSink.
func (l *Log) Tail(n int) []engine.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}

	trades := make([]engine.TradeRecord, 0, n)
	for _, entry := range l.entries[len(l.entries)-n:] {
		trades = append(trades, entry.TradeRecord)
	}
	return trades
}

// Entries returns a copy of the full log in append order.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Len returns the number of recorded trades.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// SetNowFunc overrides the clock used to stamp entries. Tests only.
func (l *Log) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
