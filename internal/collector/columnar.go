package collector

import (
	"fmt"
	"sort"
	"time"

	"MarketBrief/internal/model"
)

// columns is the column-per-field OHLCV shape served by the Vietnamese
// chart APIs: parallel arrays of unix seconds and prices.
type columns struct {
	T []int64   `json:"t"`
	O []float64 `json:"o"`
	H []float64 `json:"h"`
	L []float64 `json:"l"`
	C []float64 `json:"c"`
	V []float64 `json:"v"`
}

func (c *columns) bars(provider string) ([]model.Bar, error) {
	n := len(c.T)
	if len(c.O) != n || len(c.H) != n || len(c.L) != n || len(c.C) != n || len(c.V) != n {
		return nil, fmt.Errorf("%w: %s: column lengths differ (t=%d o=%d h=%d l=%d c=%d v=%d)",
			model.ErrParse, provider, n, len(c.O), len(c.H), len(c.L), len(c.C), len(c.V))
	}
	bars := make([]model.Bar, n)
	for i := range c.T {
		bars[i] = model.Bar{
			OpenTime: time.Unix(c.T[i], 0).UTC(),
			Open:     c.O[i],
			High:     c.H[i],
			Low:      c.L[i],
			Close:    c.C[i],
			Volume:   c.V[i],
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].OpenTime.Before(bars[j].OpenTime) })
	return bars, nil
}
