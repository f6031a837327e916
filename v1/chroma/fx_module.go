package chroma

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// FXModule provides *Store and vectorstore.Store for the Chroma backend.
//
// Dependencies required by this module:
// - A *chroma.Config instance must be available in the dependency injection container
var FXModule = fx.Module("chroma",
	fx.Provide(
		NewStoreWithDI,
		func(s *Store) vectorstore.Store { return s },
	),
	fx.Invoke(RegisterChromaLifecycle),
)

// ChromaParams groups the dependencies of NewStoreWithDI.
type ChromaParams struct {
	fx.In

	Config   *Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewStoreWithDI builds the store from injected dependencies. The observer
// is attached before the startup check so it sees ensure_ready.
// Construction never fails; see NewStore.
func NewStoreWithDI(p ChromaParams) *Store {
	cfg := p.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := newStore(cfg, NewHTTPExecutor(*cfg), p.Logger)
	if p.Observer != nil {
		s.WithObserver(p.Observer)
	}
	s.startupCheck()
	return s
}

// RegisterChromaLifecycle retries the collection probe on start when the
// construction probe failed, and releases connections on stop. Start never
// fails: an unreachable server surfaces on first use.
func RegisterChromaLifecycle(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if s.State() == StateReady {
				return nil
			}
			if err := s.EnsureReady(ctx); err != nil {
				s.logger.Warn("chroma: collection still unavailable at startup", err, map[string]interface{}{
					"collection": s.cfg.CollectionName,
				})
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Info("chroma: closing store", nil, map[string]interface{}{
				"collection": s.cfg.CollectionName,
			})
			s.Close()
			return nil
		},
	})
}
