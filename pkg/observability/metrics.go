package observability

import (
	"context"
	"errors"
	"strconv"

	"github.com/aretw0/handshake/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the resolver collectors.
type Metrics struct {
	Resolutions  *prometheus.CounterVec
	DelayElapsed *prometheus.CounterVec
	Stalls       prometheus.Counter
	TimeToMatch  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered (e.g. by a previous engine) are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handshake_resolutions_total",
				Help: "Total number of resolved processes by destination and cause",
			},
			[]string{"destination", "cause"},
		),
		DelayElapsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handshake_delay_elapsed_total",
				Help: "Total number of processes whose watchdog fired before a match",
			},
			[]string{"auto_redirect"},
		),
		Stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "handshake_stalls_total",
			Help: "Total number of decisions blocked by a missing invitation record",
		}),
		TimeToMatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "handshake_time_to_match_seconds",
			Help:    "Time from process start to the first correlated notification",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	var err error
	m.Resolutions, err = register(reg, m.Resolutions)
	if err != nil {
		return nil, err
	}
	m.DelayElapsed, err = register(reg, m.DelayElapsed)
	if err != nil {
		return nil, err
	}
	m.Stalls, err = register(reg, m.Stalls)
	if err != nil {
		return nil, err
	}
	m.TimeToMatch, err = register(reg, m.TimeToMatch)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks records lifecycle events into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMatch: func(_ context.Context, e *domain.MatchEvent) {
			m.TimeToMatch.Observe(e.Elapsed.Seconds())
		},
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			m.Resolutions.WithLabelValues(string(e.Destination.Kind()), string(e.Cause)).Inc()
		},
		OnDelay: func(_ context.Context, e *domain.DelayEvent) {
			m.DelayElapsed.WithLabelValues(strconv.FormatBool(e.AutoRedirect)).Inc()
		},
		OnStall: func(context.Context, *domain.StallEvent) {
			m.Stalls.Inc()
		},
	}
}
