package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"MarketBrief/internal/chart"
	"MarketBrief/internal/collector"
	"MarketBrief/internal/config"
	"MarketBrief/internal/logger"
	"MarketBrief/internal/metrics"
	"MarketBrief/internal/notifier"
	"MarketBrief/internal/recorder"
)

// Notifier delivers rendered output to the chat.
type Notifier interface {
	SendPhoto(ctx context.Context, photo []byte, caption string) notifier.Result
	SendMessage(ctx context.Context, text string, preview bool) notifier.Result
}

// Sentiment reads market-wide crypto indices.
type Sentiment interface {
	FearGreed(ctx context.Context, from, to time.Time) ([]collector.FearGreedPoint, error)
	RSIOverall(ctx context.Context) (collector.RSIOverview, error)
}

// Quoter returns a single current price.
type Quoter interface {
	BuyPrice(ctx context.Context) (decimal.Decimal, error)
}

// Scanner reads screener tables.
type Scanner interface {
	Scan(ctx context.Context, r collector.Ranking) ([]collector.ScanRow, error)
}

// Deps are the clients a run may use. Every client is built by the
// caller; the scheduler never reads the environment.
type Deps struct {
	Fetchers  map[string]collector.Fetcher // keyed by Fetcher.Name()
	Sentiment Sentiment
	P2P       Quoter
	Scanner   Scanner
	Notifier  Notifier
	Formatter *notifier.Formatter
	Recorder  recorder.Recorder
	Pusher    *metrics.Pusher
	Chart     chart.Options
	Log       logrus.FieldLogger
	Now       func() time.Time
}

// Scheduler runs one named job per invocation.
type Scheduler struct {
	deps  Deps
	jobs  map[string]config.JobConfig
	tasks map[string]task
}

// New creates a Scheduler for the configured jobs.
func New(jobs map[string]config.JobConfig, deps Deps) *Scheduler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	s := &Scheduler{deps: deps, jobs: jobs}
	s.tasks = s.registry()
	return s
}

// run is the state of one job invocation.
type run struct {
	name    string
	job     config.JobConfig
	log     *logrus.Entry
	metrics *metrics.Run
	now     time.Time
}

// Run executes the named job once: fetch, compute, render, deliver.
// Any failure, including a rejected delivery, is returned.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	t, known := s.tasks[name]
	if !ok || !known {
		return fmt.Errorf("unknown job %q", name)
	}

	r := &run{
		name:    name,
		job:     job,
		log:     logger.ForRun(s.deps.Log, name),
		metrics: metrics.NewRun(),
		now:     s.deps.Now(),
	}
	if !job.IsEnabled() {
		r.log.Info("job disabled, skipping")
		return nil
	}

	if s.deps.Notifier == nil {
		return fmt.Errorf("job %s: no notifier configured", name)
	}
	if s.deps.Formatter != nil && !s.deps.Formatter.Has(job.Template) {
		return fmt.Errorf("job %s: unknown template %q", name, job.Template)
	}

	r.log.Info("running job")
	err := t(ctx, r)
	elapsed := s.deps.Now().Sub(r.now)
	r.metrics.Finish(elapsed, err)
	if perr := s.deps.Pusher.Push(ctx, name, r.metrics); perr != nil {
		r.log.WithError(perr).Warn("push metrics failed")
	}
	if err != nil {
		r.log.WithError(err).Error("job failed")
		return fmt.Errorf("job %s: %w", name, err)
	}
	r.log.WithField("elapsed", elapsed.Round(time.Millisecond).String()).Info("job done")
	return nil
}

// Entry describes a configured job.
type Entry struct {
	Name     string
	Schedule string
	Enabled  bool
	Next     time.Time // zero when disabled or unscheduled
}

// List returns the known jobs in name order with their next run time.
func (s *Scheduler) List() ([]Entry, error) {
	now := s.deps.Now()
	var out []Entry
	for _, name := range s.names() {
		job := s.jobs[name]
		e := Entry{Name: name, Schedule: job.Schedule, Enabled: job.IsEnabled()}
		if e.Enabled && job.Schedule != "" {
			sched, err := config.ParseSchedule(job.Schedule)
			if err != nil {
				return nil, fmt.Errorf("job %s: %w", name, err)
			}
			e.Next = sched.Next(now)
		}
		out = append(out, e)
	}
	return out, nil
}

// Crontab renders one crontab line per enabled, scheduled job. Each line
// starts a fresh process, so jobs never share state.
func (s *Scheduler) Crontab(binary, configPath string) (string, error) {
	entries, err := s.List()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		if !e.Enabled || e.Schedule == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("%s %s run %s", e.Schedule, binary, e.Name))
		if configPath != "" {
			b.WriteString(" --config " + configPath)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (s *Scheduler) names() []string {
	cfg := config.Config{Jobs: s.jobs}
	var out []string
	for _, name := range cfg.JobNames() {
		if _, ok := s.tasks[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
