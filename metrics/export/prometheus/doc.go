// Package prometheus exposes container metrics through client_golang.
//
// [PrometheusExporter] is a Collector that reads
// [authstate.Container.MetricsSnapshot] on each scrape. Counter names are
// prefixed authstate_*_total; the single histogram is
// authstate_dispatch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers use
//     Register or mount Handler.
//   - Mutate container state.
package prometheus
