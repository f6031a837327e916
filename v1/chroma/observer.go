package chroma

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
//
// Notes:
//   - resource: the collection name
//   - subResource: the record id for single-record operations
func (s *Store) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if s == nil || s.observer == nil {
		return
	}

	s.observer.ObserveOperation(observability.OperationContext{
		Component:   "chroma",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}

// begin opens a span for operation and returns the function that closes
// it and reports the outcome to the observer. subResource is the record id
// of single-record operations and empty otherwise.
func (s *Store) begin(ctx context.Context, operation, subResource string) (context.Context, func(err error, size int64)) {
	start := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "chroma"),
		attribute.String("db.collection.name", s.cfg.CollectionName),
	}
	if subResource != "" {
		attrs = append(attrs, attribute.String("db.record.id", subResource))
	}
	ctx, span := s.tracer.Start(ctx, "chroma."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error, size int64) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observeOperation(operation, s.cfg.CollectionName, subResource, time.Since(start), err, size, nil)
	}
}
