package qdrant

import (
	"context"
	"fmt"
	"sync"

	qdrant "github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

//
// ──────────────────────────────────────────────────────────────
//   QDRANT STORE
// ──────────────────────────────────────────────────────────────
//
// Store wraps the official Qdrant Go client and exposes it as a
// vectorstore.Store bound to one active collection.
//
// Responsibilities:
//   • Establish and validate connectivity with Qdrant.
//   • Create the active collection when missing.
//   • Map record ids and payloads onto Qdrant points.
//   • Convert similarity scores into ascending distances.
//

const instrumentationName = "github.com/Aleph-Alpha/agentmem/v1/qdrant"

// Store is a vectorstore.Store backed by Qdrant over gRPC.
type Store struct {
	api      *qdrant.Client
	cfg      Config
	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer

	mu     sync.RWMutex
	dims   int
	metric vectorstore.DistanceMetric
	closed bool
}

// NewStore connects to Qdrant, verifies it with a health check and makes sure
// the active collection exists.
//
// Unlike the Chroma store it fails fast: gRPC connections are lazy, so the
// health check is the only early signal of a wrong endpoint.
//
// Example:
//
//	store, err := qdrant.NewStore(qdrant.FromEndpoint("localhost"), log)
func NewStore(cfg *Config, logger Logger) (*Store, error) {
	return newStore(cfg, logger, nil)
}

// newStore connects and ensures the collection. observer, when set, is
// attached before the first operation.
func newStore(cfg *Config, logger Logger, observer observability.Observer) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	c := cfg.withDefaults()

	logger.Info("qdrant: connecting", nil, map[string]interface{}{
		"endpoint": c.Endpoint,
		"port":     c.Port,
	})

	api, err := qdrant.NewClient(&qdrant.Config{
		Host:                   c.Endpoint,
		Port:                   c.Port,
		APIKey:                 c.ApiKey,
		UseTLS:                 c.UseTLS,
		SkipCompatibilityCheck: !c.CheckCompatibility,
	})
	if err != nil {
		return nil, &vectorstore.TransportError{Op: "qdrant: connect", Err: err}
	}

	s := &Store{
		api:      api,
		cfg:      c,
		logger:   logger,
		observer: observer,
		tracer:   otel.Tracer(instrumentationName),
		dims:     c.EmbeddingDims,
		metric:   c.Metric,
	}

	if err := s.healthCheck(); err != nil {
		_ = api.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	if err := s.EnsureCollection(ctx); err != nil {
		_ = api.Close()
		return nil, err
	}

	logger.Info("qdrant: store ready", nil, map[string]interface{}{
		"collection": c.CollectionName,
	})
	return s, nil
}

// healthCheck verifies the availability of the Qdrant service.
func (s *Store) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultHealthTimeout)
	defer cancel()

	resp, err := s.api.HealthCheck(ctx)
	if err != nil {
		return mapError("qdrant: health check", err)
	}

	s.logger.Debug("qdrant: health check passed", nil, map[string]interface{}{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
	})
	return nil
}

// WithObserver attaches an observer notified after every operation.
func (s *Store) WithObserver(observer observability.Observer) *Store {
	s.observer = observer
	return s
}

// Client returns the underlying Qdrant SDK client.
func (s *Store) Client() *qdrant.Client {
	return s.api
}

// CollectionName returns the name of the active collection.
func (s *Store) CollectionName() string {
	return s.cfg.CollectionName
}

// Close shuts down the gRPC connection. Calling it twice is safe.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.api.Close(); err != nil {
		return fmt.Errorf("qdrant: close: %w", err)
	}
	return nil
}

func (s *Store) dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

func (s *Store) activeMetric() vectorstore.DistanceMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metric
}

// withTimeout applies the configured timeout when ctx has no deadline.
func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
