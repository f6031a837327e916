package qdrant

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// FXModule defines the Fx module for the Qdrant store.
//
// The module:
//  1. Provides NewStoreWithDI, making *qdrant.Store available to other components.
//  2. Provides the store as a vectorstore.Store.
//  3. Invokes RegisterQdrantLifecycle to close the connection on shutdown.
//
// Usage:
//
//	app := fx.New(
//	    qdrant.FXModule,
//	    // other modules...
//	)
//
// Dependencies required by this module:
// - A *qdrant.Config instance must be available in the dependency injection container.
//
// Do not combine it with chroma.FXModule or chromem.FXModule in one
// application: each provides vectorstore.Store.
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewStoreWithDI,
		func(s *Store) vectorstore.Store { return s },
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams defines dependencies needed to construct the Qdrant store.
type QdrantParams struct {
	fx.In

	Config   *Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewStoreWithDI builds the store from injected dependencies.
func NewStoreWithDI(p QdrantParams) (*Store, error) {
	return newStore(p.Config, p.Logger, p.Observer)
}

// RegisterQdrantLifecycle closes the gRPC connection on shutdown.
func RegisterQdrantLifecycle(lc fx.Lifecycle, s *Store) {
	var once sync.Once

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var err error
			once.Do(func() {
				err = s.Close()
				s.logger.Info("qdrant: connection closed", err, nil)
			})
			return err
		},
	})
}
