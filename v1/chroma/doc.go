// Package chroma implements vectorstore.Store on top of the Chroma HTTP API.
//
// # Overview
//
// A Store talks to one Chroma server and works on one active collection.
// Every operation is a single JSON request/response round trip performed by
// an Executor; the default HTTPExecutor keeps a pooled http.Client with a
// 10s connect timeout and a 30s read timeout and never retries.
//
// # Lifecycle
//
// NewStore probes the server for the active collection and creates it when
// absent:
//
//	Unknown → Probing → {Present | Absent} → Ready
//
// A failing probe is logged, not returned. The store is still returned and
// the failure shows up on the first real operation. EnsureReady repeats the
// probe on demand, and ResetCollection drops and recreates the collection
// with the recorded name, dimensionality and metric.
//
// Chroma addresses record operations by collection id. The id reported at
// probe or creation time is used when known, the name otherwise.
//
// # Protocol
//
//	CreateCollection  POST   /collections               200, 201, 409
//	Insert            POST   /collections/{c}/add       200, 201
//	Search            POST   /collections/{c}/query     200
//	DeleteVector      POST   /collections/{c}/delete    200
//	UpdateVector      POST   /collections/{c}/upsert    200
//	GetVector         POST   /collections/{c}/get       200
//	ListVectors       POST   /collections/{c}/get       200
//	ListCollections   GET    /collections               200
//	DeleteCollection  DELETE /collections/{name}        200, 404
//	CollectionInfo    GET    /collections/{name}        200
//
// Any other status becomes a *vectorstore.ProtocolError carrying the status
// and raw body. Query responses hold one result list per query vector; the
// store sends one vector and unwraps exactly one level.
//
// # Filters
//
// vectorstore.FilterSet values are translated to Chroma where clauses using
// $eq, $ne, $gt, $gte, $lt, $lte, $in, $nin, $and and $or.
//
// # Usage
//
//	cfg := chroma.DefaultConfig().
//	    WithCollection("agent_memories").
//	    WithEmbeddingDims(1536)
//
//	store := chroma.NewStore(cfg, log)
//	defer store.Close()
//
//	err := store.Insert(ctx,
//	    [][]float32{vec},
//	    []payload.Payload{{"user_id": payload.String("alice")}},
//	    []string{"mem-1"},
//	)
//
//	hits, err := store.Search(ctx, "", vec, 5, vectorstore.Equals(map[string]any{"user_id": "alice"}))
//
// # FX Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    chroma.FXModule,
//	    fx.Provide(func() *chroma.Config { return chroma.DefaultConfig() }),
//	)
package chroma
