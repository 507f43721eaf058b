package collector

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"MarketBrief/internal/calculator"
	"MarketBrief/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Bars   map[string][]model.Bar
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[q.Symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[q.Symbol]; ok {
		return bars, nil
	}
	count := q.Limit
	if count <= 0 {
		count = 60
	}
	return generateMockBars(m.Price, count), nil
}

func generateMockBars(basePrice float64, count int) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	end := time.Now().Truncate(24 * time.Hour)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			OpenTime: end.AddDate(0, 0, -(count - i)),
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			Volume:   1000000,
		}
	}
	return bars
}

// Fan-out defaults.
const (
	DefaultWorkers = 10
	DefaultRate    = rate.Limit(10) // requests per second
	DefaultBurst   = 10
)

// Result is the outcome for one symbol of a fan-out.
type Result struct {
	Symbol string
	Series *model.Series
	Err    error
}

// Collector orchestrates data fetching, validation and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Params  calculator.Params
	Workers int
	Limiter *rate.Limiter
}

// NewCollector creates a new Collector with the default fan-out limits.
func NewCollector(fetcher Fetcher, params calculator.Params) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Params:  params,
		Workers: DefaultWorkers,
		Limiter: rate.NewLimiter(DefaultRate, DefaultBurst),
	}
}

// Collect fetches one symbol, validates the bars and fills the indicator columns.
func (c *Collector) Collect(ctx context.Context, q Query) (*model.Series, error) {
	bars, err := c.Fetcher.FetchBars(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", q.Symbol, c.Fetcher.Name(), err)
	}
	s := model.NewSeries(q.Symbol, q.Interval, bars)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", q.Symbol, err)
	}
	if err := calculator.Apply(s, c.Params); err != nil {
		return nil, fmt.Errorf("%s indicators: %w", q.Symbol, err)
	}
	return s, nil
}

// CollectAll runs Collect for every symbol with bounded concurrency.
// Failures stay in their own Result and never cancel the other symbols.
// Results keep the order of symbols and are complete when it returns.
func (c *Collector) CollectAll(ctx context.Context, q Query, symbols []string) []Result {
	results := make([]Result, len(symbols))
	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			results[i].Symbol = sym
			if c.Limiter != nil {
				if err := c.Limiter.Wait(ctx); err != nil {
					results[i].Err = fmt.Errorf("%s: %w", sym, err)
					return nil
				}
			}
			sq := q
			sq.Symbol = sym
			results[i].Series, results[i].Err = c.Collect(ctx, sq)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Split separates successful series from failed symbols.
func Split(results []Result) (ok []*model.Series, failed []Result) {
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		ok = append(ok, r.Series)
	}
	return ok, failed
}
