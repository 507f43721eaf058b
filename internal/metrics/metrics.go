// Package metrics records per-run job metrics and pushes them to a
// Prometheus Pushgateway. Jobs are one-shot processes, so nothing is
// scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run holds the metrics of a single job run.
type Run struct {
	reg *prometheus.Registry

	Duration      prometheus.Gauge
	Success       prometheus.Gauge
	FetchFailures prometheus.Gauge
	Deliveries    *prometheus.CounterVec // labels: outcome
	LastSuccess   prometheus.Gauge
}

// NewRun registers a fresh set of run metrics. LastSuccess is only
// registered once the run succeeds so a failed run never resets it.
func NewRun() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketbrief_job_duration_seconds",
			Help: "Wall time of the last run",
		}),
		Success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketbrief_job_success",
			Help: "1 if the last run completed, 0 otherwise",
		}),
		FetchFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketbrief_job_fetch_failures",
			Help: "Symbols that could not be fetched in the last run",
		}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketbrief_job_deliveries_total",
			Help: "Telegram sends of the last run by outcome",
		}, []string{"outcome"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "marketbrief_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
	r.reg.MustRegister(r.Duration, r.Success, r.FetchFailures, r.Deliveries)
	return r
}

// Delivery counts one send with the given outcome.
func (r *Run) Delivery(outcome string) {
	r.Deliveries.WithLabelValues(outcome).Inc()
}

// Finish records the run duration and result.
func (r *Run) Finish(elapsed time.Duration, err error) {
	r.Duration.Set(elapsed.Seconds())
	if err != nil {
		r.Success.Set(0)
		return
	}
	r.Success.Set(1)
	r.LastSuccess.SetToCurrentTime()
	r.reg.MustRegister(r.LastSuccess)
}

// Gatherer exposes the run registry.
func (r *Run) Gatherer() prometheus.Gatherer { return r.reg }

// Pusher sends run metrics to a Pushgateway. A Pusher with no URL does nothing.
type Pusher struct {
	url string
	job string
}

// NewPusher creates a pusher for the gateway at url under job.
func NewPusher(url, job string) *Pusher {
	return &Pusher{url: url, job: job}
}

// Enabled reports whether a gateway is configured.
func (p *Pusher) Enabled() bool { return p != nil && p.url != "" }

// Push adds the run's metrics to the group of task. Metrics not in the
// run, such as an earlier LastSuccess, are left in place.
func (p *Pusher) Push(ctx context.Context, task string, run *Run) error {
	if !p.Enabled() {
		return nil
	}
	err := push.New(p.url, p.job).
		Gatherer(run.Gatherer()).
		Grouping("task", task).
		AddContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
