package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"MarketBrief/internal/model"
)

// DefaultVPSURL serves per-stock daily history.
const DefaultVPSURL = "https://histdatafeed.vps.com.vn"

// VPS retry policy: three attempts with capped exponential backoff.
const (
	vpsAttempts = 3
	vpsWaitBase = time.Second
	vpsWaitMax  = 10 * time.Second
)

// VPSFetcher implements Fetcher for single stocks. It is the only
// client that retries.
type VPSFetcher struct {
	client *resty.Client
}

// NewVPSFetcher creates a new fetcher with optional proxy support.
func NewVPSFetcher(baseURL, proxyURL string) *VPSFetcher {
	if baseURL == "" {
		baseURL = DefaultVPSURL
	}
	client := newClient(baseURL, proxyURL)
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(vpsAttempts - 1)
	client.SetRetryWaitTime(vpsWaitBase)
	client.SetRetryMaxWaitTime(vpsWaitMax)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
	})
	return &VPSFetcher{client: client}
}

// WithRetryWait overrides the backoff bounds.
func (f *VPSFetcher) WithRetryWait(base, max time.Duration) *VPSFetcher {
	f.client.SetRetryWaitTime(base)
	f.client.SetRetryMaxWaitTime(max)
	return f
}

func (f *VPSFetcher) Name() string { return "vps" }

// vpsHistory is the TradingView UDF history answer.
type vpsHistory struct {
	columns
	Symbol string `json:"symbol"`
	Status string `json:"s"`
}

// FetchBars reads daily bars for the last q.Lookback, 130 days by default.
func (f *VPSFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	from, to := q.window(time.Now(), 130*24*time.Hour)
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     q.Symbol,
			"resolution": "D",
			"from":       strconv.FormatInt(from.Unix(), 10),
			"to":         strconv.FormatInt(to.Unix(), 10),
		}).
		Get("/tradingview/history")
	if err := checkResponse("vps", resp, err); err != nil {
		return nil, err
	}

	var h vpsHistory
	if err := json.Unmarshal(resp.Body(), &h); err != nil {
		return nil, fmt.Errorf("%w: vps %s: %v", model.ErrParse, q.Symbol, err)
	}
	if h.Status != "" && h.Status != "ok" {
		return nil, fmt.Errorf("%w: vps %s: status %q", model.ErrFetch, q.Symbol, h.Status)
	}
	return h.bars("vps")
}
