// Package prometheus exposes goBlog client metrics as a Prometheus collector.
//
// [NewCollector] wraps a [goBlog.Client] (or any source with the same two
// methods). Register it with a registry of your choosing, or mount
// [Collector.Handler] which serves a private registry. Counters are named
// goblog_*_total; the identity resolution latency histogram is
// goblog_fetch_user_latency_seconds.
//
// # What this package must NOT do
//
//   - Register into the global default registry.
//   - Mutate client state.
package prometheus
