package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/regiongraph/pkg/domain"
)

// Metrics holds the collectors of a pipeline run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	regions       prometheus.Gauge
	emptyRegions  prometheus.Gauge
	locations     prometheus.Gauge
	transitions   prometheus.Gauge
	objects       prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regiongraph_runs_total",
				Help: "Total number of pipeline runs by result",
			},
			[]string{"result"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regiongraph_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"stage"},
		),
		stageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regiongraph_stage_errors_total",
				Help: "Total number of failed pipeline stages",
			},
			[]string{"stage"},
		),
		regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regiongraph_regions",
			Help: "Regions in the last finalized graph",
		}),
		emptyRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regiongraph_empty_regions",
			Help: "Regions without locations in the last finalized graph",
		}),
		locations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regiongraph_locations",
			Help: "Locations in the last finalized graph",
		}),
		transitions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regiongraph_transitions",
			Help: "Transitions in the last finalized graph",
		}),
		objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "regiongraph_logic_objects",
			Help: "Logic objects fed to the builder in the last run",
		}),
	}
	m.Registry.MustRegister(
		m.runs, m.stageDuration, m.stageErrors,
		m.regions, m.emptyRegions, m.locations, m.transitions, m.objects,
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnd: func(_ context.Context, e *domain.StageEvent) {
			m.stageDuration.WithLabelValues(e.Stage).Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.stageErrors.WithLabelValues(e.Stage).Inc()
			}
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.runs.WithLabelValues(e.Result).Inc()
			if e.Result != "ok" {
				return
			}
			m.regions.Set(float64(e.Stats.Regions))
			m.emptyRegions.Set(float64(e.Stats.EmptyRegions))
			m.locations.Set(float64(e.Stats.Locations))
			m.transitions.Set(float64(e.Stats.Transitions))
			m.objects.Set(float64(e.Objects))
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// WriteToTextfile writes the registry to path for the node exporter
// textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

// Merge combines hooks so that each callback runs in order.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnStageStart != nil {
			prev := out.OnStageStart
			out.OnStageStart = func(ctx context.Context, e *domain.StageEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStageStart(ctx, e)
			}
		}
		if h.OnStageEnd != nil {
			prev := out.OnStageEnd
			out.OnStageEnd = func(ctx context.Context, e *domain.StageEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStageEnd(ctx, e)
			}
		}
		if h.OnRunEnd != nil {
			prev := out.OnRunEnd
			out.OnRunEnd = func(ctx context.Context, e *domain.RunEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRunEnd(ctx, e)
			}
		}
	}
	return out
}
