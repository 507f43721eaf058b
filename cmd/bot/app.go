package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"MarketBrief/internal/chart"
	"MarketBrief/internal/collector"
	"MarketBrief/internal/config"
	"MarketBrief/internal/metrics"
	"MarketBrief/internal/notifier"
	"MarketBrief/internal/recorder"
	"MarketBrief/internal/scheduler"
)

type app struct {
	sched *scheduler.Scheduler
	rec   recorder.Recorder
	log   logrus.FieldLogger
}

// newApp builds every client from cfg and hands them to the scheduler.
func newApp(cfg *config.Config, log *logrus.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Data sources
	fetchers := map[string]collector.Fetcher{
		"yahoo":   collector.NewYahooFetcher(),
		"dnse":    collector.NewDNSEFetcher(cfg.Providers.DNSE, cfg.Proxy),
		"vps":     collector.NewVPSFetcher(cfg.Providers.VPS, cfg.Proxy),
		"binance": collector.NewBinanceFetcher(cfg.Providers.Binance, cfg.Proxy),
	}
	scanner := collector.NewTradingViewScanner(cfg.Providers.TradingView, cfg.Proxy)
	if top := cfg.Jobs["tops"].Top; top > 0 {
		scanner.Size = top
	}

	// Output
	formatter, err := notifier.NewFormatter(loc)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL, cfg.Proxy)

	var rec recorder.Recorder
	csv, err := recorder.NewCSVRecorder(cfg.DataPath("p2p.csv"))
	if err != nil {
		log.WithError(err).Warn("init csv recorder failed, p2p runs will fail")
		rec = recorder.NewNoopRecorder()
	} else {
		log.WithField("path", csv.Path()).Debug("p2p samples")
		rec = csv
	}

	pusher := metrics.NewPusher(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job)
	if pusher.Enabled() {
		log.WithField("url", cfg.Metrics.PushgatewayURL).Debug("metrics push enabled")
	}

	sched := scheduler.New(cfg.Jobs, scheduler.Deps{
		Fetchers:  fetchers,
		Sentiment: collector.NewCoinMarketCapClient(cfg.Providers.CoinMarketCap, cfg.Proxy),
		P2P:       collector.NewP2PClient(cfg.Providers.BinanceP2P, cfg.Proxy),
		Scanner:   scanner,
		Notifier:  tn,
		Formatter: formatter,
		Recorder:  rec,
		Pusher:    pusher,
		Chart:     chart.DefaultOptions(),
		Log:       log,
	})
	return &app{sched: sched, rec: rec, log: log}, nil
}

func (a *app) Close() {
	if err := a.rec.Close(); err != nil {
		a.log.WithError(err).Warn("close recorder")
	}
}
