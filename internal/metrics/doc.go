// Package metrics exposes the server's operational counters and gauges
// in Prometheus text exposition format at /metrics.
package metrics
