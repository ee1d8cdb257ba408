// Package metrics exposes runtime memory snapshots and the Prometheus
// collectors shared by the benchmark driver and the HTTP server.
package metrics
