package tracer

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type nopLogger struct{}

func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}

func TestNewClientInstallsGlobalProvider(t *testing.T) {
	tr := NewClient(Config{ServiceName: "memdemo", AppEnv: "test"}, nopLogger{})
	t.Cleanup(func() { _ = tr.Shutdown(context.Background()) })

	assert.Same(t, tr.tracer, otel.GetTracerProvider())

	ctx, span := tr.StartSpan(context.Background(), "memdemo.recall", nil)
	defer span.End()
	header := http.Header{}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
	assert.NotEmpty(t, header.Get("traceparent"))
}

func TestStartAndEndSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tr := &Tracer{tracer: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), logger: nopLogger{}}

	_, span := tr.StartSpan(context.Background(), "memdemo.remember", map[string]interface{}{
		"user_id": "alice",
		"facts":   2,
	})
	EndSpan(span, errors.New("insert facts: status 500"))

	_, span = tr.StartSpan(context.Background(), "memdemo.recall", nil)
	EndSpan(span, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "memdemo.remember", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Events(), 1)
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.String("user_id", "alice"),
		attribute.Int("facts", 2),
	}, ended[0].Attributes())
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestNilTracerUsesGlobalProvider(t *testing.T) {
	var tr *Tracer
	_, span := tr.StartSpan(context.Background(), "noop", nil)
	EndSpan(span, nil)
}

func TestAttributes(t *testing.T) {
	attrs := Attributes(map[string]interface{}{
		"ids":     []string{"a", "b"},
		"score":   float32(0.5),
		"elapsed": 1500 * time.Millisecond,
		"kind":    struct{ N int }{3},
	})
	assert.ElementsMatch(t, []attribute.KeyValue{
		attribute.StringSlice("ids", []string{"a", "b"}),
		attribute.Float64("score", 0.5),
		attribute.Int64("elapsed_ms", 1500),
		attribute.String("kind", "{3}"),
	}, attrs)
	assert.Nil(t, Attributes(nil))
}
