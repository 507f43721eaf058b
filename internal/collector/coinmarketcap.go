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

// DefaultCoinMarketCapURL serves the public data-api used by the website.
const DefaultCoinMarketCapURL = "https://api.coinmarketcap.com"

// FearGreedPoint is one daily fear and greed reading.
type FearGreedPoint struct {
	Time  time.Time
	Score float64
	Name  string
}

// RSIOverview is the market-wide RSI summary of the heatmap.
type RSIOverview struct {
	Average              float64
	Yesterday            float64
	OversoldPercentage   float64
	OverboughtPercentage float64
	NeutralPercentage    float64
}

// CoinMarketCapClient reads sentiment data from CoinMarketCap.
type CoinMarketCapClient struct {
	client *resty.Client
}

// NewCoinMarketCapClient creates a new client with optional proxy support.
func NewCoinMarketCapClient(baseURL, proxyURL string) *CoinMarketCapClient {
	if baseURL == "" {
		baseURL = DefaultCoinMarketCapURL
	}
	return &CoinMarketCapClient{client: newClient(baseURL, proxyURL)}
}

func (c *CoinMarketCapClient) Name() string { return "coinmarketcap" }

func (c *CoinMarketCapClient) get(ctx context.Context, path string, params map[string]string) (gjson.Result, error) {
	resp, err := c.client.R().SetContext(ctx).SetQueryParams(params).Get(path)
	if err := checkResponse("coinmarketcap", resp, err); err != nil {
		return gjson.Result{}, err
	}
	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: coinmarketcap: invalid json", model.ErrParse)
	}
	doc := gjson.ParseBytes(body)
	// error_code is sometimes sent as a string.
	if code := doc.Get("status.error_code"); code.Exists() && code.Int() != 0 {
		return gjson.Result{}, fmt.Errorf("%w: coinmarketcap: error %s: %s",
			model.ErrFetch, code.String(), doc.Get("status.error_message").String())
	}
	return doc, nil
}

// FearGreed returns the daily index readings between from and to, oldest first.
func (c *CoinMarketCapClient) FearGreed(ctx context.Context, from, to time.Time) ([]FearGreedPoint, error) {
	doc, err := c.get(ctx, "/data-api/v3/fear-greed/chart", map[string]string{
		"start": strconv.FormatInt(from.Unix(), 10),
		"end":   strconv.FormatInt(to.Unix(), 10),
	})
	if err != nil {
		return nil, err
	}
	list := doc.Get("data.dataList")
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: coinmarketcap: missing data.dataList", model.ErrParse)
	}

	var points []FearGreedPoint
	for i, item := range list.Array() {
		ts, err := parseTimestamp(item.Get("timestamp"))
		if err != nil {
			return nil, fmt.Errorf("%w: coinmarketcap: point %d: %v", model.ErrParse, i, err)
		}
		score := item.Get("score")
		if !score.Exists() {
			return nil, fmt.Errorf("%w: coinmarketcap: point %d has no score", model.ErrParse, i)
		}
		points = append(points, FearGreedPoint{Time: ts, Score: score.Float(), Name: item.Get("name").String()})
	}
	return points, nil
}

// RSIOverall returns the 1h RSI(14) summary over liquid coins.
func (c *CoinMarketCapClient) RSIOverall(ctx context.Context) (RSIOverview, error) {
	doc, err := c.get(ctx, "/data-api/v3/cryptocurrency/rsi/heatmap/overall", map[string]string{
		"timeframe":          "1h",
		"rsiPeriod":          "14",
		"volume24hRange.min": "1000000",
		"marketCapRange.min": "50000000",
	})
	if err != nil {
		return RSIOverview{}, err
	}
	o := doc.Get("data.overall")
	if !o.Get("averageRsi").Exists() {
		return RSIOverview{}, fmt.Errorf("%w: coinmarketcap: missing data.overall.averageRsi", model.ErrParse)
	}
	return RSIOverview{
		Average:              o.Get("averageRsi").Float(),
		Yesterday:            o.Get("yesterday").Float(),
		OversoldPercentage:   o.Get("oversoldPercentage").Float(),
		OverboughtPercentage: o.Get("overboughtPercentage").Float(),
		NeutralPercentage:    o.Get("neutralPercentage").Float(),
	}, nil
}

// parseTimestamp accepts unix seconds as a number or a string, or RFC 3339.
func parseTimestamp(v gjson.Result) (time.Time, error) {
	switch v.Type {
	case gjson.Number:
		return time.Unix(v.Int(), 0).UTC(), nil
	case gjson.String:
		if n, err := strconv.ParseInt(v.Str, 10, 64); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}
		t, err := time.Parse(time.RFC3339, v.Str)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q: %w", v.Str, err)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timestamp missing")
}
