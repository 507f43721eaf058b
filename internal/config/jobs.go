package config

import (
	"fmt"
	"time"
)

// JobConfig is the per-job part of the config. Zero fields take the
// job's defaults.
type JobConfig struct {
	Enabled      *bool    `yaml:"enabled"`
	Schedule     string   `yaml:"schedule"`
	Title        string   `yaml:"title"`
	Symbol       string   `yaml:"symbol"`
	Symbols      []string `yaml:"symbols"`
	Interval     string   `yaml:"interval"`
	LookbackDays int      `yaml:"lookback_days"`
	Limit        int      `yaml:"limit"`
	ChartWindow  int      `yaml:"chart_window"`
	SMAWindow    int      `yaml:"sma_window"`
	RSIPeriod    int      `yaml:"rsi_period"`
	BBPeriod     int      `yaml:"bb_period"`
	BBStdDev     float64  `yaml:"bb_stddev"`
	Top          int      `yaml:"top"`
	Template     string   `yaml:"template"`
}

// IsEnabled reports whether the job runs; jobs are enabled unless disabled.
func (j JobConfig) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// Lookback is LookbackDays as a duration.
func (j JobConfig) Lookback() time.Duration {
	return time.Duration(j.LookbackDays) * 24 * time.Hour
}

func (j JobConfig) merge(d JobConfig) JobConfig {
	if j.Enabled == nil {
		j.Enabled = d.Enabled
	}
	if j.Schedule == "" {
		j.Schedule = d.Schedule
	}
	if j.Title == "" {
		j.Title = d.Title
	}
	if j.Symbol == "" {
		j.Symbol = d.Symbol
	}
	if len(j.Symbols) == 0 {
		j.Symbols = d.Symbols
	}
	if j.Interval == "" {
		j.Interval = d.Interval
	}
	if j.LookbackDays == 0 {
		j.LookbackDays = d.LookbackDays
	}
	if j.Limit == 0 {
		j.Limit = d.Limit
	}
	if j.ChartWindow == 0 {
		j.ChartWindow = d.ChartWindow
	}
	if j.SMAWindow == 0 {
		j.SMAWindow = d.SMAWindow
	}
	if j.RSIPeriod == 0 {
		j.RSIPeriod = d.RSIPeriod
	}
	if j.BBPeriod == 0 {
		j.BBPeriod = d.BBPeriod
	}
	if j.BBStdDev == 0 {
		j.BBStdDev = d.BBStdDev
	}
	if j.Top == 0 {
		j.Top = d.Top
	}
	if j.Template == "" {
		j.Template = d.Template
	}
	return j
}

func (j JobConfig) validate() error {
	if j.Schedule != "" {
		if _, err := ParseSchedule(j.Schedule); err != nil {
			return err
		}
	}
	if j.ChartWindow < 0 || j.SMAWindow < 0 || j.RSIPeriod < 0 || j.BBPeriod < 0 || j.BBStdDev < 0 {
		return fmt.Errorf("indicator and chart settings must not be negative")
	}
	if j.LookbackDays < 0 || j.Limit < 0 || j.Top < 0 {
		return fmt.Errorf("lookback_days, limit and top must not be negative")
	}
	return nil
}

// VN30 lists the index members screened by suggest-vn30.
var VN30 = []string{
	"ACB", "BCM", "BID", "CTG", "DGC", "FPT", "GAS", "GVR", "HDB", "HPG",
	"LPB", "MBB", "MSN", "MWG", "PLX", "SAB", "SHB", "SSB", "SSI", "STB",
	"TCB", "TPB", "VCB", "VHM", "VIB", "VIC", "VJC", "VNM", "VPB", "VRE",
}

// DefaultJobs returns every known job with its defaults. Schedules are in
// the host's cron timezone.
func DefaultJobs() map[string]JobConfig {
	chart := func(title, symbol, interval, schedule string, lookback, limit int) JobConfig {
		return JobConfig{
			Schedule:     schedule,
			Title:        title,
			Symbol:       symbol,
			Interval:     interval,
			LookbackDays: lookback,
			Limit:        limit,
			ChartWindow:  50,
			SMAWindow:    10,
			Template:     "chart",
		}
	}
	return map[string]JobConfig{
		"gold":    chart("Gold", "GC=F", "1d", "0 8 * * 1-5", 60, 0),
		"oil":     chart("Crude oil", "CL=F", "1d", "5 8 * * 1-5", 60, 0),
		"vnindex": chart("VNINDEX", "VNINDEX", "1d", "0 15 * * 1-5", 100, 0),
		"vn30":    chart("VN30", "VN30", "1d", "5 15 * * 1-5", 100, 0),
		"btc":     chart("Bitcoin", "BTCUSDT", "1d", "0 7 * * *", 0, 100),
		"suggest-vn30": {
			Schedule:     "30 15 * * 1-5",
			Symbols:      VN30,
			Interval:     "1d",
			LookbackDays: 130,
			SMAWindow:    10,
			RSIPeriod:    14,
			BBPeriod:     14,
			BBStdDev:     2,
			Top:          5,
			Template:     "suggest",
		},
		"fgi": {
			Schedule:     "10 7 * * *",
			LookbackDays: 30,
			Template:     "fgi",
		},
		"crypto-rsi": {
			Schedule: "0 */4 * * *",
			Template: "crypto_rsi",
		},
		"p2p": {
			Schedule: "0 * * * *",
			Symbol:   "USDT",
			Template: "p2p",
		},
		"tops": {
			Schedule: "0 9 * * *",
			Top:      20,
			Template: "top",
		},
	}
}
