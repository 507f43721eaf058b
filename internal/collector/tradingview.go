package collector

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"MarketBrief/internal/model"
)

// DefaultTradingViewURL is the screener backend.
const DefaultTradingViewURL = "https://scanner.tradingview.com"

// Ranking is one of the coin screener tables.
type Ranking struct {
	Title  string
	Column string
	Order  string
}

// The four tables of the tops job.
var (
	TopGainers      = Ranking{Title: "Top gainers", Column: "24h_close_change|5", Order: "desc"}
	TopLosers       = Ranking{Title: "Top losers", Column: "24h_close_change|5", Order: "asc"}
	TopTransactions = Ranking{Title: "Top transactions", Column: "txs_count", Order: "desc"}
	TopVolumes      = Ranking{Title: "Top volumes", Column: "24h_vol_cmc", Order: "desc"}
)

// ScanRow is one screener line.
type ScanRow struct {
	Symbol string
	Value  float64
}

// TradingViewScanner reads the coin screener.
type TradingViewScanner struct {
	client *resty.Client
	Size   int
}

// NewTradingViewScanner creates a scanner returning 20 rows per table.
func NewTradingViewScanner(baseURL, proxyURL string) *TradingViewScanner {
	if baseURL == "" {
		baseURL = DefaultTradingViewURL
	}
	return &TradingViewScanner{client: newClient(baseURL, proxyURL), Size: 20}
}

func (s *TradingViewScanner) Name() string { return "tradingview" }

// Scan returns the table for r in screener order.
func (s *TradingViewScanner) Scan(ctx context.Context, r Ranking) ([]ScanRow, error) {
	payload := map[string]any{
		"markets": []string{"coin"},
		"range":   []int{0, s.Size},
		"columns": []string{"base_currency", r.Column},
		"sort":    map[string]string{"sortBy": r.Column, "sortOrder": r.Order},
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/coin/scan")
	if err := checkResponse("tradingview", resp, err); err != nil {
		return nil, err
	}

	data := gjson.GetBytes(resp.Body(), "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("%w: tradingview: missing data", model.ErrParse)
	}
	var rows []ScanRow
	for i, item := range data.Array() {
		d := item.Get("d").Array()
		if len(d) < 2 {
			return nil, fmt.Errorf("%w: tradingview: row %d has %d columns", model.ErrParse, i, len(d))
		}
		rows = append(rows, ScanRow{Symbol: d[0].String(), Value: d[1].Float()})
	}
	return rows, nil
}
