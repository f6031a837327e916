package chromem

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// FXModule provides *Store and vectorstore.Store for the in-process
// backend. A *chromem.Config must be supplied.
var FXModule = fx.Module("chromem",
	fx.Provide(
		NewStoreWithDI,
		func(s *Store) vectorstore.Store { return s },
	),
)

// ChromemParams groups the dependencies of NewStoreWithDI.
type ChromemParams struct {
	fx.In

	Config   *Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

func NewStoreWithDI(p ChromemParams) (*Store, error) {
	s, err := NewStore(p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		s.WithObserver(p.Observer)
	}
	return s, nil
}
