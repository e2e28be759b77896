// Package api hosts the optional status server that runs alongside an index
// run. Routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/status for the current phase, counters and last result.
package api
