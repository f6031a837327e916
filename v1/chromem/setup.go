package chromem

import (
	"context"
	"errors"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

const instrumentationName = "github.com/Aleph-Alpha/agentmem/v1/chromem"

var errNoEmbeddingFunc = errors.New("chromem: documents must carry an embedding")

// rejectEmbed is installed as the collection embedding function so chromem
// never reaches out to a remote embedding API on its own.
func rejectEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbeddingFunc
}

// Store is an in-process vectorstore.Store backed by chromem-go.
//
// chromem-go keeps no record listing, so the store tracks the ids of the
// active collection itself. Writes are serialized; reads run concurrently.
type Store struct {
	db       *chromem.DB
	cfg      Config
	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer

	mu   sync.RWMutex
	dims map[string]int
	ids  map[string]struct{}
}

// NewStore opens the database, in memory or under cfg.PersistDir, and
// makes sure the active collection exists.
func NewStore(cfg *Config, logger Logger) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	c := cfg.withDefaults()

	var db *chromem.DB
	if c.PersistDir == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(c.PersistDir, c.Compress)
		if err != nil {
			return nil, fmt.Errorf("chromem: open %q: %w", c.PersistDir, err)
		}
	}

	s := &Store{
		db:     db,
		cfg:    c,
		logger: logger,
		tracer: otel.Tracer(instrumentationName),
		dims:   map[string]int{c.CollectionName: c.EmbeddingDims},
		ids:    map[string]struct{}{},
	}

	col, err := db.GetOrCreateCollection(c.CollectionName, collectionMetadata(c.EmbeddingDims), rejectEmbed)
	if err != nil {
		return nil, fmt.Errorf("chromem: create collection %q: %w", c.CollectionName, err)
	}
	if err := s.rebuildIndex(context.Background(), col); err != nil {
		return nil, err
	}

	logger.Info("chromem: store ready", nil, map[string]interface{}{
		"collection": c.CollectionName,
		"persistent": c.PersistDir != "",
		"count":      col.Count(),
	})
	return s, nil
}

// WithObserver attaches an observer notified after every operation.
func (s *Store) WithObserver(observer observability.Observer) *Store {
	s.observer = observer
	return s
}

func (s *Store) CollectionName() string { return s.cfg.CollectionName }

// rebuildIndex recovers the ids of documents loaded from disk. Without a
// known dimensionality there is no probe vector, and listing only covers
// records written through this store.
func (s *Store) rebuildIndex(ctx context.Context, col *chromem.Collection) error {
	n := col.Count()
	if n == 0 {
		return nil
	}
	dims := s.dims[s.cfg.CollectionName]
	if dims <= 0 {
		s.logger.Warn("chromem: embedding dims unknown, existing records are not listed", nil, map[string]interface{}{
			"collection": s.cfg.CollectionName,
			"count":      n,
		})
		return nil
	}

	probe := make([]float32, dims)
	probe[0] = 1
	results, err := col.QueryEmbedding(ctx, probe, n, nil, nil)
	if err != nil {
		return fmt.Errorf("chromem: index existing records: %w", err)
	}
	for _, r := range results {
		s.ids[r.ID] = struct{}{}
	}
	return nil
}

// active returns the active collection, or a 404 ProtocolError after it
// was dropped with DeleteCollection.
func (s *Store) active(op string) (*chromem.Collection, error) {
	col := s.db.GetCollection(s.cfg.CollectionName, rejectEmbed)
	if col == nil {
		return nil, &vectorstore.ProtocolError{
			Op:         op,
			StatusCode: 404,
			Body:       fmt.Sprintf("collection %q does not exist", s.cfg.CollectionName),
		}
	}
	return col, nil
}

func (s *Store) activeDims() int {
	return s.dims[s.cfg.CollectionName]
}

func collectionMetadata(dims int) map[string]string {
	m := map[string]string{"hnsw:space": string(metric)}
	if dims > 0 {
		m["dimensions"] = fmt.Sprint(dims)
	}
	return m
}
