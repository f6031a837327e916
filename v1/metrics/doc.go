// Package metrics exposes Prometheus metrics for agentmem clients.
//
// Metrics owns an isolated registry and an HTTP server that serves it. It
// implements observability.Observer, so attaching it to a store or model
// client turns every completed operation into counter and histogram
// samples:
//
//	m := metrics.NewMetrics(metrics.DefaultConfig())
//	store := chroma.NewStore(cfg, log).WithObserver(m)
//
// Recorded series, all labelled with the configured service:
//
//	agentmem_operations_total{component,operation,status}
//	agentmem_operation_duration_seconds{component,operation}
//	agentmem_operation_items_total{component,operation}
//
// The namespace prefix ("agentmem" above) comes from Config.Namespace.
//
// With FXModule the server is started on application start and shut down on
// stop. Additional application metrics can be registered with CreateCounter,
// CreateHistogram and CreateGauge.
package metrics
