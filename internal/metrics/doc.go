// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - WebSocket connection state and message rates
//   - Writer batch sizes and latencies
//   - Buffer utilization and overflow counts
//   - Database connection pool stats
//   - Deduplication throughput and lag
package metrics
