// Package chromem implements vectorstore.Store in process on top of
// chromem-go, for tests, demos and single-node agents that do not run a
// vector database.
//
//	store, err := chromem.NewStore(chromem.DefaultConfig().WithEmbeddingDims(1536), log)
//	err = store.Insert(ctx, vectors, payloads, ids)
//	results, err := store.Search(ctx, "", query, 5, vectorstore.Equals(map[string]any{"user_id": "alice"}))
//
// Set Config.PersistDir to keep the database on disk between runs.
//
// Payload values are stored as their JSON wire text in chromem's string
// metadata, so kinds round-trip. String and boolean equalities of the Must
// clause are evaluated by chromem; every other condition is applied to the
// candidates afterwards.
//
// chromem-go ranks by cosine similarity only. Scores are cosine distances
// (1 - similarity) and CreateCollection rejects other metrics.
package chromem
