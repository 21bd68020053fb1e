// Package metrics exposes state machine activity to Prometheus.
package metrics
