package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

const namespace = "transitionkit"

// TransitionObserver exports transition attempts as Prometheus metrics:
// a counter of attempts per machine, edge and outcome, and a histogram of
// attempt durations per machine and outcome.
type TransitionObserver struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransitionObserver creates the collectors and registers them on reg.
// A nil reg skips registration.
func NewTransitionObserver(reg prometheus.Registerer) (*TransitionObserver, error) {
	o := &TransitionObserver{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "State transition attempts by machine, edge and outcome.",
			},
			[]string{"machine", "from", "to", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transition_duration_seconds",
				Help:      "Duration of state transition attempts.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"machine", "outcome"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{o.attempts, o.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return o, nil
}

// ObserveTransition implements statemachine.Observer.
func (o *TransitionObserver) ObserveTransition(machine string, from, to statemachine.State, outcome statemachine.Outcome, elapsed time.Duration) {
	o.attempts.WithLabelValues(machine, string(from), string(to), string(outcome)).Inc()
	o.duration.WithLabelValues(machine, string(outcome)).Observe(elapsed.Seconds())
}
