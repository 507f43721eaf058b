package collector

import (
	"context"
	"time"

	"MarketBrief/internal/model"
)

// Query selects the bars to fetch for one symbol.
type Query struct {
	Symbol   string
	Interval string        // "1h", "1d" or "1w"
	Lookback time.Duration // how far back from now
	Limit    int           // bar count for providers that page by count
}

// Fetcher defines the interface for fetching bar data from one provider.
// Implementations return bars in ascending time order; validation is
// left to the caller.
type Fetcher interface {
	FetchBars(ctx context.Context, q Query) ([]model.Bar, error)
	Name() string
}

// window returns the [from, to] range of q ending now.
func (q Query) window(now time.Time, fallback time.Duration) (time.Time, time.Time) {
	lb := q.Lookback
	if lb <= 0 {
		lb = fallback
	}
	return now.Add(-lb), now
}
