// Package qdrant implements vectorstore.Store on top of the official Qdrant
// Go client (gRPC).
//
// # Overview
//
// A Store is bound to one active collection, created on construction when
// missing. Unlike the Chroma backend it fails fast: NewStore returns an
// error when the health check or the collection bootstrap fails.
//
// Basic usage:
//
//	cfg := qdrant.FromEndpoint("localhost").
//	    WithCollection("agent_memories").
//	    WithEmbeddingDims(1536)
//
//	store, err := qdrant.NewStore(cfg, log)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Insert(ctx, vectors, payloads, ids)
//	results, err := store.Search(ctx, "", queryVector, 5,
//	    vectorstore.Equals(map[string]any{"user_id": "alice"}))
//
// # Record IDs
//
// Qdrant point ids must be UUIDs or unsigned integers. Record ids that are
// UUIDs are used as point ids directly; any other id is mapped to a
// deterministic UUIDv5. The original id is stored in the payload under
// RecordIDKey and restored on read, so callers never see the point id.
//
// # Payloads
//
// Strings, integers, floats and booleans map to the matching Qdrant value
// kinds and keep their kind on the way back. Null values are not stored.
// Opaque values are stored as their JSON text; nested structs and lists
// written by other clients come back as Opaque.
//
// # Scores
//
// Search results carry ascending distances, consistent with the other
// backends: cosine 1-s, dot -s, euclid s, where s is Qdrant's score.
//
// # Filters
//
// Must, Should and MustNot map directly to Qdrant filter clauses. Float
// equality is expressed as a closed range since Qdrant only matches
// keywords, integers and booleans exactly.
//
// # FX Module Integration
//
//	app := fx.New(
//	    fx.Supply(qdrant.FromEndpoint("localhost").WithEmbeddingDims(1536)),
//	    qdrant.FXModule,
//	    fx.Invoke(func(store vectorstore.Store) {
//	        // use store
//	    }),
//	)
//
// # Package Layout
//
//	qdrant/
//	├── client.go        // Store construction, health check, Close
//	├── configs.go       // Config and builders
//	├── converter.go     // payload, id, vector and score conversion
//	├── filters.go       // FilterSet -> qdrant.Filter
//	├── operations.go    // vectorstore.Store methods
//	├── observer.go      // spans and observer callbacks
//	├── utils.go         // gRPC error mapping, collection details
//	└── fx_module.go     // Fx wiring
package qdrant
