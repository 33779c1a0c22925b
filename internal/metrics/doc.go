// Package metrics registers the Prometheus collectors cutmark exports on
// /metrics.
package metrics
