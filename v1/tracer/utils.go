package tracer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const scope = "github.com/Aleph-Alpha/agentmem"

// StartSpan starts name as a child of the span in ctx with fields attached
// as attributes. A nil Tracer starts the span on the global provider, so
// callers need no tracing setup in tests.
func (t *Tracer) StartSpan(ctx context.Context, name string, fields map[string]interface{}) (context.Context, trace.Span) {
	var provider trace.TracerProvider = otel.GetTracerProvider()
	if t != nil && t.tracer != nil {
		provider = t.tracer
	}
	return provider.Tracer(scope).Start(ctx, name, trace.WithAttributes(Attributes(fields)...))
}

// EndSpan ends span and marks it failed when err is non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Attributes converts logger-style fields into span attributes. Values of
// other types are rendered with fmt.
func Attributes(fields map[string]interface{}) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case []string:
			attrs = append(attrs, attribute.StringSlice(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float32:
			attrs = append(attrs, attribute.Float64(k, float64(val)))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case time.Duration:
			attrs = append(attrs, attribute.Int64(k+"_ms", val.Milliseconds()))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return attrs
}
