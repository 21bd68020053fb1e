// Package httpserver runs the operations endpoint: liveness, readiness
// probes over the runtime's dependencies and Prometheus metrics.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	handler := httpserver.NewOpsRouter(httpserver.Ops{
//		Gatherer: registry,
//		Probes:   map[string]httpserver.Probe{"postgres": pg.Healthcheck(pool)},
//	})
//	err := srv.Run(ctx, handler)
//
// Run returns when ctx is cancelled, after a graceful shutdown bounded by
// the configured shutdown timeout.
package httpserver
