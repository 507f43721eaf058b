package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"MarketBrief/internal/model"
)

// DefaultDNSEURL serves VNINDEX and VN30 index candles.
const DefaultDNSEURL = "https://api.dnse.com.vn"

// DNSEFetcher implements Fetcher for Vietnamese index bars.
type DNSEFetcher struct {
	client *resty.Client
}

// NewDNSEFetcher creates a new fetcher with optional proxy support.
func NewDNSEFetcher(baseURL, proxyURL string) *DNSEFetcher {
	if baseURL == "" {
		baseURL = DefaultDNSEURL
	}
	return &DNSEFetcher{client: newClient(baseURL, proxyURL)}
}

func (f *DNSEFetcher) Name() string { return "dnse" }

func dnseResolution(interval string) string {
	switch interval {
	case "1h":
		return "1H"
	case "1w":
		return "1W"
	}
	return "1D"
}

// FetchBars reads index bars for the last q.Lookback, 100 days by default.
func (f *DNSEFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	from, to := q.window(time.Now(), 100*24*time.Hour)
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     q.Symbol,
			"resolution": dnseResolution(q.Interval),
			"from":       strconv.FormatInt(from.Unix(), 10),
			"to":         strconv.FormatInt(to.Unix(), 10),
		}).
		Get("/chart-api/v2/ohlcs/index")
	if err := checkResponse("dnse", resp, err); err != nil {
		return nil, err
	}

	var cols columns
	if err := json.Unmarshal(resp.Body(), &cols); err != nil {
		return nil, fmt.Errorf("%w: dnse %s: %v", model.ErrParse, q.Symbol, err)
	}
	return cols.bars("dnse")
}
