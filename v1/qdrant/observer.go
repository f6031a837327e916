package qdrant

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
func (s *Store) observeOperation(operation, subResource string, duration time.Duration, err error, size int64) {
	if s == nil || s.observer == nil {
		return
	}

	s.observer.ObserveOperation(observability.OperationContext{
		Component:   "qdrant",
		Operation:   operation,
		Resource:    s.cfg.CollectionName,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

// begin opens a client span for operation and returns its completion func.
func (s *Store) begin(ctx context.Context, operation, subResource string) (context.Context, func(err error, size int64)) {
	start := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "qdrant"),
		attribute.String("db.collection.name", s.cfg.CollectionName),
	}
	if subResource != "" {
		attrs = append(attrs, attribute.String("db.record.id", subResource))
	}
	ctx, span := s.tracer.Start(ctx, "qdrant."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error, size int64) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observeOperation(operation, subResource, time.Since(start), err, size)
	}
}
