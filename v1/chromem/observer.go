package chromem

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
)

// begin opens an internal span for operation and returns the function that
// ends it and notifies the observer.
func (s *Store) begin(ctx context.Context, operation, subResource string) (context.Context, func(err error, size int64)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "chromem."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("db.system", "chromem"),
			attribute.String("db.collection.name", s.cfg.CollectionName),
		),
	)

	return ctx, func(err error, size int64) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if s.observer == nil {
			return
		}
		s.observer.ObserveOperation(observability.OperationContext{
			Component:   "chromem",
			Operation:   operation,
			Resource:    s.cfg.CollectionName,
			SubResource: subResource,
			Duration:    time.Since(start),
			Error:       err,
			Size:        size,
		})
	}
}
