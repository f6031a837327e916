// Package tracer configures OpenTelemetry tracing for agentmem services and
// offers StartSpan and EndSpan for application-level spans.
//
// NewClient installs a global TracerProvider and a W3C trace-context
// propagator. Client packages such as chroma obtain tracers with
// otel.Tracer and therefore start recording as soon as a Tracer exists.
// With EnableExport set, spans are batched to an OTLP/HTTP collector
// configured through the standard OTEL_EXPORTER_OTLP_* variables.
package tracer
