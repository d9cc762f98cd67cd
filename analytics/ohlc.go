package analytics

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matink112/TradeEngine/models"
	"github.com/matink112/TradeEngine/tradelog"
)

// Analyzer derives market statistics from the trade log. It is a pure
// consumer: it never feeds anything back into the book.
type Analyzer struct {
	log *tradelog.Log
	now func() time.Time
}

// Candle is one OHLC bucket. Buckets with no trades carry zero values, like
// any downstream charting layer expects for gap rendering.
type Candle struct {
	Start  time.Time       `json:"start"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// ShortInfo is the compact market header: latest traded price and percent
// changes over common windows. A nil change means not enough history.
type ShortInfo struct {
	Price    decimal.Decimal  `json:"price"`
	Change1H *decimal.Decimal `json:"1h_change"`
	Change1D *decimal.Decimal `json:"1d_change"`
	Change1W *decimal.Decimal `json:"1w_change"`
}

// DayInfo is the detailed market view combining the trailing day's OHLC with
// the live book summary.
type DayInfo struct {
	BestBid   *decimal.Decimal `json:"best_bid"`
	BestAsk   *decimal.Decimal `json:"best_ask"`
	DayOpen   decimal.Decimal  `json:"day_open"`
	DayHigh   decimal.Decimal  `json:"day_high"`
	DayLow    decimal.Decimal  `json:"day_low"`
	DayClose  decimal.Decimal  `json:"day_close"`
	Latest    decimal.Decimal  `json:"latest"`
	DayChange *decimal.Decimal `json:"day_change"`
}

// KlinePoint is one point of the trailing-24h hourly price series.
type KlinePoint struct {
	Time  time.Time       `json:"time"`
	Price decimal.Decimal `json:"price"`
}

// NewAnalyzer creates an analyzer over the given trade log.
func NewAnalyzer(log *tradelog.Log) *Analyzer {
	return &Analyzer{log: log, now: time.Now}
}

// SetNowFunc overrides the reference clock. Tests only.
func (a *Analyzer) SetNowFunc(now func() time.Time) {
	a.now = now
}

// OHLC resamples trades recorded in [from, to) into fixed-width buckets.
// Empty buckets are zero-filled.
func (a *Analyzer) OHLC(from, to time.Time, interval time.Duration) []Candle {
	if interval <= 0 || !to.After(from) {
		return nil
	}

	candles := make([]Candle, 0)
	for start := from; start.Before(to); start = start.Add(interval) {
		candles = append(candles, Candle{Start: start})
	}

	for _, entry := range a.log.Entries() {
		if entry.RecordedAt.Before(from) || !entry.RecordedAt.Before(to) {
			continue
		}
		idx := int(entry.RecordedAt.Sub(from) / interval)
		c := &candles[idx]

		if c.Volume.IsZero() && c.Open.IsZero() {
			c.Open = entry.Price
			c.High = entry.Price
			c.Low = entry.Price
		} else {
			if entry.Price.GreaterThan(c.High) {
				c.High = entry.Price
			}
			if entry.Price.LessThan(c.Low) {
				c.Low = entry.Price
			}
		}
		c.Close = entry.Price
		c.Volume = c.Volume.Add(entry.Quantity)
	}

	return candles
}

// ShortInfo returns the latest price and 1h/1d/1w percent changes. The zero
// value is returned when no trades exist yet.
func (a *Analyzer) ShortInfo() ShortInfo {
	latest, ok := a.LatestPrice()
	if !ok {
		return ShortInfo{}
	}
	return ShortInfo{
		Price:    latest,
		Change1H: a.change(time.Hour),
		Change1D: a.change(24 * time.Hour),
		Change1W: a.change(7 * 24 * time.Hour),
	}
}

// DayInfo combines the trailing day's OHLC with the live book summary.
func (a *Analyzer) DayInfo(summary models.SummaryView) DayInfo {
	now := a.now()
	candles := a.OHLC(now.Add(-24*time.Hour), now, 24*time.Hour)

	info := DayInfo{
		BestBid:   summary.BestBid,
		BestAsk:   summary.BestAsk,
		DayChange: a.change(24 * time.Hour),
	}
	if latest, ok := a.LatestPrice(); ok {
		info.Latest = latest
	}
	if len(candles) > 0 {
		info.DayOpen = candles[0].Open
		info.DayHigh = candles[0].High
		info.DayLow = candles[0].Low
		info.DayClose = candles[0].Close
	}
	return info
}

// LatestPrice returns the most recent traded price.
func (a *Analyzer) LatestPrice() (decimal.Decimal, bool) {
	entries := a.log.Entries()
	if len(entries) == 0 {
		return decimal.Zero, false
	}
	return entries[len(entries)-1].Price, true
}

// KlineSeries returns the trailing-24h hourly last-price series, forward
// filled from the previous hour when an hour saw no trades. Hours before the
// first trade in the window are omitted.
func (a *Analyzer) KlineSeries() []KlinePoint {
	now := a.now()
	from := now.Add(-24 * time.Hour).Truncate(time.Hour)

	lastInHour := make(map[time.Time]decimal.Decimal)
	for _, entry := range a.log.Entries() {
		if entry.RecordedAt.Before(from) {
			continue
		}
		lastInHour[entry.RecordedAt.Truncate(time.Hour)] = entry.Price
	}

	points := make([]KlinePoint, 0)
	var carry *decimal.Decimal
	for hour := from; !hour.After(now); hour = hour.Add(time.Hour) {
		if price, ok := lastInHour[hour]; ok {
			p := price
			carry = &p
		}
		if carry == nil {
			continue
		}
		points = append(points, KlinePoint{Time: hour, Price: *carry})
	}
	return points
}

// WriteKlineCSV writes the kline series as time,price rows.
func (a *Analyzer) WriteKlineCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "price"}); err != nil {
		return err
	}
	for _, point := range a.KlineSeries() {
		if err := cw.Write([]string{point.Time.Format(time.RFC3339), point.Price.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DumpCSV writes the full trade log as recorded_at,price,quantity,maker_side
// rows.
func (a *Analyzer) DumpCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"recorded_at", "price", "quantity", "maker_side"}); err != nil {
		return err
	}
	for _, entry := range a.log.Entries() {
		row := []string{
			entry.RecordedAt.Format(time.RFC3339Nano),
			entry.Price.String(),
			entry.Quantity.String(),
			string(entry.Party1.Side),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// change computes the percent change between the last price at or before
// now-period and the latest price, rounded to two decimals. Nil when there
// is no reference trade that far back.
func (a *Analyzer) change(period time.Duration) *decimal.Decimal {
	entries := a.log.Entries()
	if len(entries) == 0 {
		return nil
	}

	cutoff := a.now().Add(-period)
	var reference *decimal.Decimal
	for i := range entries {
		if entries[i].RecordedAt.After(cutoff) {
			break
		}
		reference = &entries[i].Price
	}
	if reference == nil || reference.IsZero() {
		return nil
	}

	latest := entries[len(entries)-1].Price
	change := latest.Sub(*reference).Div(*reference).Mul(decimal.NewFromInt(100)).Round(2)
	return &change
}
