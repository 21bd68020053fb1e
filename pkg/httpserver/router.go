package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/transitionkit/pkg/logger"
)

// Probe checks one dependency. A nil error means ready.
type Probe func(ctx context.Context) error

// Ops describes what the operations router exposes.
type Ops struct {
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Probes run on every /readyz request, keyed by dependency name.
	Probes map[string]Probe
	Logger *slog.Logger
}

// NewOpsRouter mounts:
//
//	GET /healthz  liveness, always 200
//	GET /readyz   readiness, 503 when any probe fails
//	GET /metrics  Prometheus exposition
func NewOpsRouter(ops Ops) http.Handler {
	log := ops.Logger
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
	r.Get("/readyz", readiness(log, ops.Probes))
	if ops.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(ops.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

type readinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func readiness(log *slog.Logger, probes map[string]Probe) http.HandlerFunc {
	names := slices.Sorted(maps.Keys(probes))
	return func(w http.ResponseWriter, r *http.Request) {
		report := readinessReport{Status: "ready", Checks: make(map[string]string, len(names))}
		status := http.StatusOK

		for _, name := range names {
			if err := probes[name](r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component(name),
					logger.Error(err),
				)
				report.Checks[name] = err.Error()
				report.Status = "not_ready"
				status = http.StatusServiceUnavailable
				continue
			}
			report.Checks[name] = "ok"
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
