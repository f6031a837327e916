package vectorstore

import (
	"context"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// Store is the capability contract every vector-store backend satisfies.
// A Store operates on one active collection; ListCollections and
// DeleteCollection act on the whole service.
type Store interface {
	// CreateCollection ensures a collection with the given name, dimensionality
	// and metric exists. Creating an existing collection succeeds.
	CreateCollection(ctx context.Context, name string, dims int, metric DistanceMetric) error

	// Insert adds records to the active collection. vectors, payloads and ids
	// must be non-empty and of equal length; otherwise an ArgumentError is
	// returned before any remote call.
	Insert(ctx context.Context, vectors [][]float32, payloads []payload.Payload, ids []string) error

	// Search returns at most limit records nearest to vector, ordered by
	// ascending distance. query carries the original text for backends that
	// can use it and is ignored by vector-only backends.
	Search(ctx context.Context, query string, vector []float32, limit int, filters *FilterSet) ([]SearchResult, error)

	// DeleteVector removes a record. Deleting an absent id succeeds.
	DeleteVector(ctx context.Context, id string) error

	// UpdateVector upserts the vector and/or payload of a record. A nil
	// vector or nil payload leaves that part untouched; when both are nil
	// the call is a no-op.
	UpdateVector(ctx context.Context, id string, vector []float32, p payload.Payload) error

	// GetVector fetches one record. The boolean is false when the id is
	// absent, in which case the error is nil.
	GetVector(ctx context.Context, id string) (VectorRecord, bool, error)

	// ListCollections returns the names of all collections on the service.
	ListCollections(ctx context.Context) ([]string, error)

	// DeleteCollection drops a collection by name. Dropping an absent
	// collection succeeds.
	DeleteCollection(ctx context.Context, name string) error

	// ListVectors returns records of the active collection matching filters.
	// A limit <= 0 selects the backend's default page size.
	ListVectors(ctx context.Context, filters *FilterSet, limit int) ([]VectorRecord, error)

	// ResetCollection drops the active collection and recreates it empty with
	// the same name, dimensionality and metric.
	ResetCollection(ctx context.Context) error

	// CollectionInfo describes the active collection.
	CollectionInfo(ctx context.Context) (Collection, error)
}
