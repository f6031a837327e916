package chroma

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

const instrumentationName = "github.com/Aleph-Alpha/agentmem/v1/chroma"

// State is the lifecycle state of the active collection as last observed
// by the store.
type State int

const (
	// StateUnknown: no probe has completed.
	StateUnknown State = iota
	// StateProbing: a probe is in flight.
	StateProbing
	// StatePresent: the probe found the collection.
	StatePresent
	// StateAbsent: the probe did not find the collection, or it was dropped.
	StateAbsent
	// StateReady: the collection exists and its id is known.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StatePresent:
		return "present"
	case StateAbsent:
		return "absent"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Store is a vectorstore.Store backed by a Chroma server over HTTP.
//
// A Store may be shared between goroutines. Operations are independent
// round trips; callers must not run ResetCollection concurrently with other
// operations on the same collection.
type Store struct {
	cfg      Config
	exec     Executor
	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer

	mu           sync.RWMutex
	state        State
	collectionID string
	dims         int
	metric       vectorstore.DistanceMetric
}

// NewStore builds a store for cfg and runs a best-effort probe of the
// active collection, creating it when absent. A failed probe is logged and
// not returned; the store stays usable and the failure resurfaces on the
// first operation. Call EnsureReady to retry explicitly.
func NewStore(cfg *Config, logger Logger) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewStoreWithExecutor(cfg, NewHTTPExecutor(*cfg), logger)
}

// NewStoreWithExecutor is NewStore with a caller-supplied Executor.
func NewStoreWithExecutor(cfg *Config, exec Executor, logger Logger) *Store {
	s := newStore(cfg, exec, logger)
	s.startupCheck()
	return s
}

// startupCheck runs EnsureReady under ProbeTimeout and logs a failure.
func (s *Store) startupCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ProbeTimeout)
	defer cancel()

	if err := s.EnsureReady(ctx); err != nil {
		s.logger.Error("chroma: collection probe failed, store starts unready", err, map[string]interface{}{
			"collection": s.cfg.CollectionName,
			"base_url":   s.cfg.BaseURL(),
		})
	}
}

func newStore(cfg *Config, exec Executor, logger Logger) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	c := cfg.withDefaults()
	return &Store{
		cfg:    c,
		exec:   exec,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
		dims:   c.EmbeddingDims,
		metric: c.Metric,
	}
}

// WithObserver attaches an observer notified after every operation.
// It returns the store for chaining.
//
// Example:
//
//	store := chroma.NewStore(cfg, log).WithObserver(metricsClient)
func (s *Store) WithObserver(observer observability.Observer) *Store {
	s.observer = observer
	return s
}

// State reports the lifecycle state of the active collection.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CollectionName returns the name of the active collection.
func (s *Store) CollectionName() string {
	return s.cfg.CollectionName
}

// Close releases pooled HTTP connections.
func (s *Store) Close() {
	s.exec.Close()
}

// EnsureReady probes the service for the active collection and creates it
// when absent. On success the store is Ready and knows the collection id.
func (s *Store) EnsureReady(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, "ensure_ready", "")
	defer func() { done(err, 0) }()

	s.setState(StateProbing)

	collections, err := s.listCollections(ctx)
	if err != nil {
		s.setState(StateUnknown)
		return err
	}

	for _, c := range collections {
		if c.Name != s.cfg.CollectionName {
			continue
		}
		s.setState(StatePresent)
		s.checkDimension(c)
		s.markReady(c.ID)
		s.logger.Info("chroma: using existing collection", nil, map[string]interface{}{
			"collection": c.Name,
			"id":         c.ID,
		})
		return nil
	}

	s.setState(StateAbsent)

	s.mu.RLock()
	dims, metric := s.dims, s.metric
	s.mu.RUnlock()

	if err := s.createCollection(ctx, s.cfg.CollectionName, dims, metric); err != nil {
		s.setState(StateUnknown)
		return err
	}
	return nil
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Store) markReady(id string) {
	s.mu.Lock()
	s.state = StateReady
	if id != "" {
		s.collectionID = id
	}
	s.mu.Unlock()
}

// checkDimension warns when the server reports a dimensionality different
// from the configured one.
func (s *Store) checkDimension(c collectionResponse) {
	if c.Dimension == nil || *c.Dimension == 0 {
		return
	}
	s.mu.Lock()
	configured := s.dims
	if configured == 0 {
		s.dims = *c.Dimension
	}
	s.mu.Unlock()

	if configured > 0 && configured != *c.Dimension {
		s.logger.Warn("chroma: collection dimensionality differs from configuration", nil, map[string]interface{}{
			"collection": c.Name,
			"configured": configured,
			"actual":     *c.Dimension,
		})
	}
}
