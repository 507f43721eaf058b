package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"MarketBrief/internal/model"
)

// barIterator is the part of chart.Iter the fetcher reads.
type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// YahooFetcher implements Fetcher on the Yahoo Finance chart API.
type YahooFetcher struct {
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker

	chart func(*chart.Params) barIterator
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher() *YahooFetcher {
	return &YahooFetcher{
		SymbolMap: map[string]string{
			"GOLD": "GC=F",
			"OIL":  "CL=F",
		},
		chart: func(p *chart.Params) barIterator { return chart.Get(p) },
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func yahooInterval(interval string) (datetime.Interval, error) {
	switch interval {
	case "", "1d":
		return datetime.OneDay, nil
	case "1h":
		return datetime.OneHour, nil
	case "1w":
		return datetime.Interval("1wk"), nil
	}
	return "", fmt.Errorf("yahoo: unsupported interval %q", interval)
}

// FetchBars reads daily (or hourly) bars for the last q.Lookback,
// two months by default.
func (f *YahooFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	interval, err := yahooInterval(q.Interval)
	if err != nil {
		return nil, err
	}
	start, end := q.window(time.Now(), 60*24*time.Hour)
	iter := f.chart(&chart.Params{
		Symbol:   f.yahooSymbol(q.Symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: interval,
	})

	var bars []model.Bar
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := iter.Bar()
		if b == nil {
			continue
		}
		if b.Open.IsZero() && b.High.IsZero() && b.Low.IsZero() && b.Close.IsZero() {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.Bar{
			OpenTime: time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:     b.Open.InexactFloat64(),
			High:     b.High.InexactFloat64(),
			Low:      b.Low.InexactFloat64(),
			Close:    b.Close.InexactFloat64(),
			Volume:   float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: yahoo %s: %v", model.ErrFetch, q.Symbol, err)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].OpenTime.Before(bars[j].OpenTime) })
	return bars, nil
}
