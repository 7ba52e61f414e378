/*
Package monitoring provides Prometheus metrics for sandfs node operations.

# Metrics

  - sandfs_operations_total{op,result}
  - sandfs_operation_duration_seconds{op}
  - sandfs_bytes_total{direction}
  - sandfs_archive_entries_total{direction}

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	timer := monitoring.NewTimer(metrics)
	err := doCopy()
	timer.Stop("copy", err)

A nil *Metrics is accepted everywhere and records nothing, so callers that do
not opt in pay no cost.
*/
package monitoring
