package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MarketBrief/internal/calculator"
	"MarketBrief/internal/caption"
	"MarketBrief/internal/chart"
	"MarketBrief/internal/collector"
	"MarketBrief/internal/model"
	"MarketBrief/internal/notifier"
	"MarketBrief/internal/recorder"
	"MarketBrief/internal/strategy"
)

type task func(ctx context.Context, r *run) error

func (s *Scheduler) registry() map[string]task {
	return map[string]task{
		"gold":         s.chartTask("yahoo"),
		"oil":          s.chartTask("yahoo"),
		"vnindex":      s.chartTask("dnse"),
		"vn30":         s.chartTask("dnse"),
		"btc":          s.chartTask("binance"),
		"suggest-vn30": s.suggestTask("vps"),
		"fgi":          s.fearGreedTask,
		"crypto-rsi":   s.cryptoRSITask,
		"p2p":          s.p2pTask,
		"tops":         s.topsTask,
	}
}

func params(r *run) calculator.Params {
	return calculator.Params{
		SMAWindow: r.job.SMAWindow,
		RSIPeriod: r.job.RSIPeriod,
		BBPeriod:  r.job.BBPeriod,
		BBStdDev:  r.job.BBStdDev,
	}
}

func query(r *run) collector.Query {
	return collector.Query{
		Symbol:   r.job.Symbol,
		Interval: r.job.Interval,
		Lookback: r.job.Lookback(),
		Limit:    r.job.Limit,
	}
}

func (s *Scheduler) fetcher(provider string) (collector.Fetcher, error) {
	f, ok := s.deps.Fetchers[provider]
	if !ok || f == nil {
		return nil, fmt.Errorf("no %s client configured", provider)
	}
	return f, nil
}

// chartTask sends the candle chart of one symbol with a change caption.
func (s *Scheduler) chartTask(provider string) task {
	return func(ctx context.Context, r *run) error {
		f, err := s.fetcher(provider)
		if err != nil {
			return err
		}
		series, err := collector.NewCollector(f, params(r)).Collect(ctx, query(r))
		if err != nil {
			if errors.Is(err, model.ErrFetch) {
				r.metrics.FetchFailures.Set(1)
			}
			return err
		}
		r.log.WithField("bars", series.Len()).Debug("bars collected")

		change, err := caption.Latest(series)
		if err != nil {
			return err
		}
		opts := s.deps.Chart
		opts.Window = r.job.ChartWindow
		img, err := chart.NewRenderer(opts).Render(series)
		if err != nil {
			return err
		}

		data := change.Context()
		data["title"] = r.job.Title
		text, err := s.render(r, data)
		if err != nil {
			return err
		}
		return s.sendPhoto(ctx, r, img, text)
	}
}

// suggestTask ranks the index members by RSI and lists both extremes.
func (s *Scheduler) suggestTask(provider string) task {
	return func(ctx context.Context, r *run) error {
		f, err := s.fetcher(provider)
		if err != nil {
			return err
		}
		results := collector.NewCollector(f, params(r)).CollectAll(ctx, query(r), r.job.Symbols)
		ok, failed := collector.Split(results)
		r.metrics.FetchFailures.Set(float64(len(failed)))
		var missing []string
		for _, res := range failed {
			r.log.WithField("symbol", res.Symbol).WithError(res.Err).Warn("symbol skipped")
			missing = append(missing, res.Symbol)
		}
		if len(ok) == 0 {
			return fmt.Errorf("%w: all %d symbols failed", model.ErrFetch, len(results))
		}

		sug := strategy.Rank(ok, r.job.Top)
		if sug.Empty() {
			r.log.Warn("no symbol away from the RSI midline")
		}
		text, err := s.render(r, map[string]any{
			"time":   r.now,
			"weak":   sug.Weak,
			"strong": sug.Strong,
			"failed": append(missing, sug.Failed...),
		})
		if err != nil {
			return err
		}
		return s.sendMessage(ctx, r, text)
	}
}

func (s *Scheduler) fearGreedTask(ctx context.Context, r *run) error {
	if s.deps.Sentiment == nil {
		return fmt.Errorf("no sentiment client configured")
	}
	points, err := s.deps.Sentiment.FearGreed(ctx, r.now.Add(-r.job.Lookback()), r.now)
	if err != nil {
		return err
	}
	if len(points) < model.MinBars {
		return &model.ValidationError{Index: -1, Reason: fmt.Sprintf("need %d fear and greed points, got %d", model.MinBars, len(points))}
	}
	last, prev := points[len(points)-1], points[len(points)-2]

	data := caption.Between("FGI", last.Time, last.Score, prev.Score).Context()
	data["classification"] = caption.Classify(last.Score).Sentiment()
	text, err := s.render(r, data)
	if err != nil {
		return err
	}
	return s.sendMessage(ctx, r, text)
}

func (s *Scheduler) cryptoRSITask(ctx context.Context, r *run) error {
	if s.deps.Sentiment == nil {
		return fmt.Errorf("no sentiment client configured")
	}
	o, err := s.deps.Sentiment.RSIOverall(ctx)
	if err != nil {
		return err
	}
	text, err := s.render(r, map[string]any{
		"time":           r.now,
		"average":        o.Average,
		"oversold":       o.OversoldPercentage,
		"overbought":     o.OverboughtPercentage,
		"classification": caption.Classify(o.Average).RSI(),
	})
	if err != nil {
		return err
	}
	return s.sendMessage(ctx, r, text)
}

// p2pTask records the current P2P buy price and reports it against the
// previous sample.
func (s *Scheduler) p2pTask(ctx context.Context, r *run) error {
	if s.deps.P2P == nil {
		return fmt.Errorf("no p2p client configured")
	}
	if _, noop := s.deps.Recorder.(*recorder.NoopRecorder); noop {
		return fmt.Errorf("no sample store configured")
	}
	price, err := s.deps.P2P.BuyPrice(ctx)
	if err != nil {
		r.metrics.FetchFailures.Set(1)
		return err
	}
	prev, hasPrev, err := s.deps.Recorder.Last()
	if err != nil {
		return fmt.Errorf("read samples: %w", err)
	}
	if err := s.deps.Recorder.Append(model.Sample{Time: r.now, Price: price}); err != nil {
		return fmt.Errorf("record sample: %w", err)
	}

	data := map[string]any{
		"date":         r.now,
		"value":        price.InexactFloat64(),
		"has_previous": hasPrev,
		"delta":        0.0,
	}
	if hasPrev {
		data["delta"] = price.Sub(prev.Price).InexactFloat64()
	}
	text, err := s.render(r, data)
	if err != nil {
		return err
	}
	return s.sendMessage(ctx, r, text)
}

type tableRow struct {
	Symbol string
	Value  string
}

// topsTask sends the four screener tables in order; the first failure
// stops the rest.
func (s *Scheduler) topsTask(ctx context.Context, r *run) error {
	if s.deps.Scanner == nil {
		return fmt.Errorf("no screener client configured")
	}
	tables := []struct {
		ranking collector.Ranking
		format  func(float64) string
	}{
		{collector.TopGainers, percent},
		{collector.TopLosers, percent},
		{collector.TopTransactions, notifier.Compact},
		{collector.TopVolumes, notifier.Compact},
	}
	for _, t := range tables {
		rows, err := s.deps.Scanner.Scan(ctx, t.ranking)
		if err != nil {
			return fmt.Errorf("%s: %w", t.ranking.Title, err)
		}
		var table []tableRow
		for _, row := range rows {
			// Stablecoins and fiat pairs crowd out real movers.
			if strings.Contains(row.Symbol, "USD") {
				continue
			}
			table = append(table, tableRow{Symbol: row.Symbol, Value: t.format(row.Value)})
		}
		text, err := s.render(r, map[string]any{"title": t.ranking.Title, "time": r.now, "rows": table})
		if err != nil {
			return err
		}
		if err := s.sendMessage(ctx, r, text); err != nil {
			return fmt.Errorf("%s: %w", t.ranking.Title, err)
		}
	}
	return nil
}

func percent(v float64) string { return fmt.Sprintf("%.2f%%", v) }

func (s *Scheduler) render(r *run, data map[string]any) (string, error) {
	if s.deps.Formatter == nil {
		return "", fmt.Errorf("no formatter configured")
	}
	return s.deps.Formatter.Render(r.job.Template, data)
}

func (s *Scheduler) sendPhoto(ctx context.Context, r *run, img []byte, text string) error {
	res := s.deps.Notifier.SendPhoto(ctx, img, text)
	return s.delivered(r, res)
}

func (s *Scheduler) sendMessage(ctx context.Context, r *run, text string) error {
	res := s.deps.Notifier.SendMessage(ctx, text, false)
	return s.delivered(r, res)
}

func (s *Scheduler) delivered(r *run, res notifier.Result) error {
	r.metrics.Delivery(res.Outcome.String())
	if !res.OK() {
		r.log.WithField("outcome", res.Outcome.String()).WithField("status", res.StatusCode).Warn("delivery failed")
		return res.Error()
	}
	return nil
}
