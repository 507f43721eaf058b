package collector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/shopspring/decimal"

	"MarketBrief/internal/model"
)

func jsonServer(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			t.Errorf("unexpected path %s, want %s", r.URL.Path, path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBinance_ParsesRows(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[
			[1700000000000,"10.0","12.0","9.0","11.0","100.5",1700003599999,"0",5,"0","0","0"],
			[1700003600000,"11.0","13.0","10.0","9.0","150",1700007199999,"0",7,"0","0","0"]
		]`)
	}))
	defer srv.Close()

	bars, err := NewBinanceFetcher(srv.URL, "").FetchBars(context.Background(), Query{Symbol: "BTCUSDT", Interval: "1h", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].OpenTime.Equal(time.UnixMilli(1700000000000)) || bars[0].Volume != 100.5 || bars[1].Close != 9 {
		t.Errorf("unexpected bars %+v", bars)
	}
	if gotQuery != "interval=1h&limit=2&symbol=BTCUSDT" {
		t.Errorf("unexpected query %s", gotQuery)
	}
}

func TestBinance_BadRows(t *testing.T) {
	for _, body := range []string{`{"code":-1121}`, `[[1,"a","1","1","1","1"]]`, `[[1,"1"]]`, `not json`} {
		if _, err := parseKlines([]byte(body)); !errors.Is(err, model.ErrParse) {
			t.Errorf("%s: expected ErrParse, got %v", body, err)
		}
	}
}

func TestBinance_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer srv.Close()
	_, err := NewBinanceFetcher(srv.URL, "").FetchBars(context.Background(), Query{Symbol: "NOPE"})
	if !errors.Is(err, model.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestDNSE_Columnar(t *testing.T) {
	srv := jsonServer(t, "/chart-api/v2/ohlcs/index",
		`{"t":[1700086400,1700000000],"o":[1201,1200],"h":[1215,1210],"l":[1195,1190],"c":[1199,1205],"v":[6000,5000]}`)

	bars, err := NewDNSEFetcher(srv.URL, "").FetchBars(context.Background(), Query{Symbol: "VNINDEX"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 || bars[0].Close != 1205 || bars[1].Close != 1199 {
		t.Errorf("expected bars sorted by time, got %+v", bars)
	}
	if err := model.Validate(bars); err != nil {
		t.Errorf("parsed bars should validate: %v", err)
	}
}

func TestDNSE_ColumnMismatch(t *testing.T) {
	srv := jsonServer(t, "/chart-api/v2/ohlcs/index", `{"t":[1,2],"o":[1],"h":[1,1],"l":[1,1],"c":[1,1],"v":[1,1]}`)
	_, err := NewDNSEFetcher(srv.URL, "").FetchBars(context.Background(), Query{Symbol: "VN30"})
	if !errors.Is(err, model.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestVPS_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("symbol") != "FPT" || r.URL.Query().Get("resolution") != "D" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"symbol":"FPT","s":"ok","t":[1,2],"o":[1,2],"h":[2,3],"l":[1,1],"c":[2,1],"v":[10,20]}`)
	}))
	defer srv.Close()

	f := NewVPSFetcher(srv.URL, "").WithRetryWait(time.Millisecond, 5*time.Millisecond)
	bars, err := f.FetchBars(context.Background(), Query{Symbol: "FPT"})
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 || len(bars) != 2 {
		t.Errorf("expected success on the third attempt, calls=%d bars=%d", calls.Load(), len(bars))
	}
}

func TestVPS_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewVPSFetcher(srv.URL, "").WithRetryWait(time.Millisecond, 5*time.Millisecond)
	_, err := f.FetchBars(context.Background(), Query{Symbol: "FPT"})
	if !errors.Is(err, model.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestVPS_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewVPSFetcher(srv.URL, "").WithRetryWait(time.Millisecond, 5*time.Millisecond)
	if _, err := f.FetchBars(context.Background(), Query{Symbol: "XXX"}); !errors.Is(err, model.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestVPS_NoDataStatus(t *testing.T) {
	srv := jsonServer(t, "/tradingview/history", `{"s":"no_data","t":[],"o":[],"h":[],"l":[],"c":[],"v":[]}`)
	_, err := NewVPSFetcher(srv.URL, "").FetchBars(context.Background(), Query{Symbol: "FPT"})
	if !errors.Is(err, model.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestCoinMarketCap_FearGreed(t *testing.T) {
	srv := jsonServer(t, "/data-api/v3/fear-greed/chart", `{
		"data":{"dataList":[
			{"score":40,"name":"Fear","timestamp":"1700000000","btcPrice":"1","btcVolume":"1"},
			{"score":52,"name":"Neutral","timestamp":1700086400,"btcPrice":"1","btcVolume":"1"}
		]},
		"status":{"timestamp":"2024-01-01T00:00:00.000Z","error_code":"0","error_message":"SUCCESS"}
	}`)

	points, err := NewCoinMarketCapClient(srv.URL, "").FearGreed(context.Background(), time.Unix(0, 0), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Time.Unix() != 1700000000 || points[1].Time.Unix() != 1700086400 {
		t.Errorf("timestamps parsed wrong: %v %v", points[0].Time, points[1].Time)
	}
	if points[1].Score != 52 || points[1].Name != "Neutral" {
		t.Errorf("unexpected point %+v", points[1])
	}
}

func TestCoinMarketCap_StatusError(t *testing.T) {
	srv := jsonServer(t, "/data-api/v3/fear-greed/chart",
		`{"status":{"error_code":500,"error_message":"rate limited"}}`)
	_, err := NewCoinMarketCapClient(srv.URL, "").FearGreed(context.Background(), time.Unix(0, 0), time.Now())
	if !errors.Is(err, model.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestCoinMarketCap_RSIOverall(t *testing.T) {
	srv := jsonServer(t, "/data-api/v3/cryptocurrency/rsi/heatmap/overall", `{
		"data":{"overall":{"averageRsi":63.5,"yesterday":58.1,"days7Ago":50,"days30Ago":50,"days90Ago":50,
			"oversoldCount":3,"overboughtCount":20,"neutralCount":77,
			"oversoldPercentage":3.0,"overboughtPercentage":20.0,"neutralPercentage":77.0}},
		"status":{"error_code":"0"}
	}`)
	o, err := NewCoinMarketCapClient(srv.URL, "").RSIOverall(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if o.Average != 63.5 || o.OversoldPercentage != 3 || o.OverboughtPercentage != 20 {
		t.Errorf("unexpected overview %+v", o)
	}
}

func TestP2P_BuyPrice(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		io.WriteString(w, `{"code":"000000","data":[{"adv":{"price":"25900.00"}},{"adv":{"price":"25950.50"}}]}`)
	}))
	defer srv.Close()

	price, err := NewP2PClient(srv.URL, "").BuyPrice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !price.Equal(decimal.RequireFromString("25950.5")) {
		t.Errorf("expected the second advert's price, got %s", price)
	}
	if payload["fiat"] != "VND" || payload["asset"] != "USDT" || payload["tradeType"] != "BUY" {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestP2P_NoAdverts(t *testing.T) {
	srv := jsonServer(t, "/bapi/c2c/v2/friendly/c2c/adv/search", `{"data":[]}`)
	if _, err := NewP2PClient(srv.URL, "").BuyPrice(context.Background()); !errors.Is(err, model.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestTradingView_Scan(t *testing.T) {
	var payload struct {
		Columns []string          `json:"columns"`
		Sort    map[string]string `json:"sort"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		io.WriteString(w, `{"totalCount":2,"data":[{"s":"CRYPTO:PEPEUSD","d":["PEPE",31.5]},{"s":"CRYPTO:USDCUSD","d":["USDC",0.01]}]}`)
	}))
	defer srv.Close()

	rows, err := NewTradingViewScanner(srv.URL, "").Scan(context.Background(), TopGainers)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Symbol != "PEPE" || rows[0].Value != 31.5 {
		t.Errorf("unexpected rows %+v", rows)
	}
	if payload.Columns[1] != "24h_close_change|5" || payload.Sort["sortOrder"] != "desc" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

type fakeIter struct {
	bars []*finance.ChartBar
	i    int
	err  error
}

func (it *fakeIter) Next() bool {
	if it.i >= len(it.bars) {
		return false
	}
	it.i++
	return true
}
func (it *fakeIter) Bar() *finance.ChartBar { return it.bars[it.i-1] }
func (it *fakeIter) Err() error             { return it.err }

func chartBar(ts int, o, h, l, c float64, v int) *finance.ChartBar {
	return &finance.ChartBar{
		Timestamp: ts,
		Open:      decimal.NewFromFloat(o),
		High:      decimal.NewFromFloat(h),
		Low:       decimal.NewFromFloat(l),
		Close:     decimal.NewFromFloat(c),
		Volume:    v,
	}
}

func TestYahoo_ConvertsBars(t *testing.T) {
	var gotSymbol string
	f := NewYahooFetcher()
	f.chart = func(p *chart.Params) barIterator {
		gotSymbol = p.Symbol
		return &fakeIter{bars: []*finance.ChartBar{
			chartBar(200, 2040, 2050, 2030, 2045.5, 1200),
			chartBar(150, 0, 0, 0, 0, 0),
			chartBar(100, 2030, 2042, 2025, 2040, 1000),
		}}
	}

	bars, err := f.FetchBars(context.Background(), Query{Symbol: "GOLD"})
	if err != nil {
		t.Fatal(err)
	}
	if gotSymbol != "GC=F" {
		t.Errorf("expected GC=F, got %s", gotSymbol)
	}
	if len(bars) != 2 {
		t.Fatalf("expected the empty bar to be skipped, got %d bars", len(bars))
	}
	if bars[0].OpenTime.Unix() != 100 || bars[1].Close != 2045.5 || bars[1].Volume != 1200 {
		t.Errorf("unexpected bars %+v", bars)
	}
}

func TestYahoo_IteratorError(t *testing.T) {
	f := NewYahooFetcher()
	f.chart = func(*chart.Params) barIterator { return &fakeIter{err: errors.New("remote-error")} }
	if _, err := f.FetchBars(context.Background(), Query{Symbol: "CL=F"}); !errors.Is(err, model.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if _, err := f.FetchBars(context.Background(), Query{Symbol: "CL=F", Interval: "5m"}); err == nil {
		t.Fatal("expected an unsupported interval error")
	}
}
