// Package metrics exports scan lifecycle counters to prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sentinel-red/sentinel-backend/internal/scans/simulator"
)

// Observer counts simulator events.
type Observer struct {
	started  prometheus.Counter
	finished *prometheus.CounterVec
	ticks    prometheus.Counter
	active   prometheus.Gauge
	duration *prometheus.HistogramVec
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "scans_started_total",
			Help:      "scans started",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "scans_finished_total",
			Help:      "scans that reached a terminal status",
		}, []string{"status"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "scan_ticks_total",
			Help:      "progress ticks applied to running scans",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "scans_active",
			Help:      "scans currently running or paused",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "scan_duration_seconds",
			Help:      "wall time from start to terminal status",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"status"}),
	}

	reg.MustRegister(o.started, o.finished, o.ticks, o.active, o.duration)
	return o
}

func (o *Observer) HandleScanEvent(ctx context.Context, ev simulator.Event) {
	switch ev.Type {
	case simulator.EventStarted:
		o.started.Inc()
		o.active.Inc()
	case simulator.EventProgress:
		o.ticks.Inc()
	case simulator.EventCompleted, simulator.EventStopped:
		if ev.Type == simulator.EventCompleted {
			o.ticks.Inc()
		}
		status := string(ev.Scan.Status)
		o.finished.WithLabelValues(status).Inc()
		o.active.Dec()
		if ev.Scan.CompletedAt != nil {
			o.duration.WithLabelValues(status).Observe(ev.Scan.CompletedAt.Sub(ev.Scan.StartedAt).Seconds())
		}
	}
}
