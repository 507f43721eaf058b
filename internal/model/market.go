package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents a single OHLCV candlestick.
type Bar struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Up reports whether the bar closed above its open.
func (b Bar) Up() bool { return b.Close > b.Open }

// Series is an ordered bar sequence plus the derived columns the
// calculator attaches to it. Derived slices have the same length as Bars
// and hold NaN where a value is undefined.
type Series struct {
	Symbol    string
	Interval  string
	Bars      []Bar
	VolumeSMA []float64
	RSI       []float64
	BBRatio   []float64
	FetchedAt time.Time
}

// NewSeries wraps bars for a symbol.
func NewSeries(symbol, interval string, bars []Bar) *Series {
	return &Series{Symbol: symbol, Interval: interval, Bars: bars, FetchedAt: time.Now()}
}

// Validate checks the bars of the series.
func (s *Series) Validate() error {
	return Validate(s.Bars)
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. The series must not be empty.
func (s *Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes extracts the close prices in time order.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Tail returns a view of the last n bars and their derived columns.
// With n <= 0 or n >= Len the whole series is returned.
func (s *Series) Tail(n int) *Series {
	if n <= 0 || n >= len(s.Bars) {
		return s
	}
	start := len(s.Bars) - n
	return &Series{
		Symbol:    s.Symbol,
		Interval:  s.Interval,
		Bars:      s.Bars[start:],
		VolumeSMA: tailOf(s.VolumeSMA, start),
		RSI:       tailOf(s.RSI, start),
		BBRatio:   tailOf(s.BBRatio, start),
		FetchedAt: s.FetchedAt,
	}
}

func tailOf(col []float64, start int) []float64 {
	if len(col) <= start {
		return nil
	}
	return col[start:]
}

// Sample is one scalar observation kept by the CSV recorder.
type Sample struct {
	Time  time.Time
	Price decimal.Decimal
}
