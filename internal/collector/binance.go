package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"MarketBrief/internal/model"
)

// DefaultBinanceURL is the spot REST API.
const DefaultBinanceURL = "https://api.binance.com"

// BinanceFetcher implements Fetcher on spot klines.
type BinanceFetcher struct {
	client *resty.Client
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string) *BinanceFetcher {
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	return &BinanceFetcher{client: newClient(baseURL, proxyURL)}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// FetchBars reads the last q.Limit klines (500 by default).
func (f *BinanceFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	interval := q.Interval
	if interval == "" {
		interval = "1d"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 500
	}
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":   q.Symbol,
			"interval": interval,
			"limit":    strconv.Itoa(limit),
		}).
		Get("/api/v3/klines")
	if err := checkResponse("binance", resp, err); err != nil {
		return nil, err
	}
	return parseKlines(resp.Body())
}

// parseKlines reads kline rows: [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
func parseKlines(body []byte) ([]model.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: binance: invalid json", model.ErrParse)
	}
	rows := gjson.ParseBytes(body)
	if !rows.IsArray() {
		return nil, fmt.Errorf("%w: binance: expected an array of klines", model.ErrParse)
	}

	var bars []model.Bar
	var perr error
	rows.ForEach(func(i, row gjson.Result) bool {
		fields := row.Array()
		if len(fields) < 6 {
			perr = fmt.Errorf("%w: binance: kline %d has %d fields", model.ErrParse, i.Int(), len(fields))
			return false
		}
		vals := make([]float64, 5)
		for j := range vals {
			v, err := strconv.ParseFloat(fields[j+1].String(), 64)
			if err != nil {
				perr = fmt.Errorf("%w: binance: kline %d field %d: %v", model.ErrParse, i.Int(), j+1, err)
				return false
			}
			vals[j] = v
		}
		bars = append(bars, model.Bar{
			OpenTime: time.UnixMilli(fields[0].Int()).UTC(),
			Open:     vals[0],
			High:     vals[1],
			Low:      vals[2],
			Close:    vals[3],
			Volume:   vals[4],
		})
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return bars, nil
}
