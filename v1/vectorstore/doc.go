// Package vectorstore provides a backend-agnostic contract for storing and
// searching agent memories as embedding vectors.
//
// # Overview
//
// This package defines the [Store] interface that every vector-store backend
// implements, together with the shared record, search and collection types,
// the [FilterSet] predicate model and the error taxonomy. Memory pipelines
// depend on [Store] only and can switch between backends without change.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                  Memory / Application Layer                 │
//	│       (uses vectorstore.Store - no backend imports)         │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│                     vectorstore.Store                       │
//	│     (collection lifecycle, vector CRUD, similarity search)  │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	        ┌──────────────────┼──────────────────┐
//	        ▼                  ▼                  ▼
//	┌───────────────┐  ┌───────────────┐  ┌───────────────┐
//	│ chroma.Store  │  │ qdrant.Store  │  │ chromem.Store │
//	│  (HTTP/JSON)  │  │    (gRPC)     │  │ (in-process)  │
//	└───────────────┘  └───────────────┘  └───────────────┘
//
// A Store is bound to one active collection, chosen at construction. The
// collection-level operations (ListCollections, DeleteCollection) act on the
// whole service.
//
// # Usage
//
//	type MemoryIndex struct {
//	    store vectorstore.Store
//	}
//
//	func (m *MemoryIndex) Remember(ctx context.Context, id string, vec []float32, userID string) error {
//	    return m.store.Insert(ctx,
//	        [][]float32{vec},
//	        []payload.Payload{{"user_id": payload.String(userID)}},
//	        []string{id},
//	    )
//	}
//
//	func (m *MemoryIndex) Recall(ctx context.Context, vec []float32, userID string) ([]vectorstore.SearchResult, error) {
//	    return m.store.Search(ctx, "", vec, 5, vectorstore.Equals(map[string]any{"user_id": userID}))
//	}
//
// # Filters
//
// Filters use Must (AND), Should (OR) and MustNot (NOT) clauses:
//
//	filters := vectorstore.NewFilterSet(
//	    vectorstore.Must(vectorstore.NewMatch("user_id", "alice")),
//	    vectorstore.Should(
//	        vectorstore.NewMatch("category", "food"),
//	        vectorstore.NewMatch("category", "travel"),
//	    ),
//	    vectorstore.MustNot(vectorstore.NewMatchAny("status", "deleted", "archived")),
//	)
//
// Each backend translates a FilterSet into its native predicate language.
// FilterSet.Matches evaluates the same predicate against a payload in memory.
//
// # Scores
//
// SearchResult.Score is a distance: smaller values are closer and results
// are returned in ascending order of score.
//
// # Errors
//
// Backends report failures as [*TransportError], [*ProtocolError],
// [*CodecError] or [*ArgumentError]. Each matches its sentinel with
// errors.Is (ErrTransport, ErrProtocol, ErrCodec, ErrInvalidArgument). A
// missing record is not an error: GetVector reports it through its boolean
// result and deleting an absent record or collection succeeds.
package vectorstore
