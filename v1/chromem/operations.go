package chromem

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	chromem "github.com/philippgille/chromem-go"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// CreateCollection creates name when missing. Only the cosine metric is
// supported; dims of zero leave the dimensionality unchecked.
func (s *Store) CreateCollection(ctx context.Context, name string, dims int, m vectorstore.DistanceMetric) (err error) {
	_, done := s.begin(ctx, "create_collection", "")
	defer func() { done(err, 0) }()

	if name == "" {
		return vectorstore.NewArgumentError("create collection", "name is empty")
	}
	if m != "" && m != metric {
		return vectorstore.NewArgumentError("create collection", fmt.Sprintf("metric %q is not supported, only %q", m, metric))
	}
	if dims < 0 {
		return vectorstore.NewArgumentError("create collection", "dims must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(name, dims)
}

func (s *Store) createLocked(name string, dims int) error {
	if s.db.GetCollection(name, rejectEmbed) != nil {
		return nil
	}
	if _, err := s.db.CreateCollection(name, collectionMetadata(dims), rejectEmbed); err != nil {
		return fmt.Errorf("chromem: create collection %q: %w", name, err)
	}
	s.dims[name] = dims
	s.logger.Info("chromem: created collection", nil, map[string]interface{}{
		"collection": name,
		"dims":       dims,
	})
	return nil
}

// Insert adds or overwrites records in the active collection.
func (s *Store) Insert(ctx context.Context, vectors [][]float32, payloads []payload.Payload, ids []string) (err error) {
	ctx, done := s.begin(ctx, "insert", "")
	defer func() { done(err, int64(len(ids))) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := vectorstore.ValidateInsert("chromem: insert", vectors, payloads, ids, s.activeDims()); err != nil {
		return err
	}
	col, err := s.active("insert")
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(ids))
	for i := range ids {
		docs[i] = newDocument(ids[i], vectors[i], payloads[i])
	}
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromem: insert: %w", err)
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return nil
}

// Search ranks the active collection by cosine distance (1 - similarity).
func (s *Store) Search(ctx context.Context, _ string, vector []float32, limit int, filters *vectorstore.FilterSet) (results []vectorstore.SearchResult, err error) {
	ctx, done := s.begin(ctx, "search", "")
	defer func() { done(err, int64(len(results))) }()

	if limit <= 0 {
		return nil, vectorstore.NewArgumentError("search", "limit must be positive")
	}
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := vectorstore.ValidateVector("chromem: search", vector, s.activeDims()); err != nil {
		return nil, err
	}
	col, err := s.active("search")
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults above the collection size; filtering after
	// the query needs every candidate anyway.
	n := col.Count()
	if n == 0 {
		return []vectorstore.SearchResult{}, nil
	}
	hits, err := col.QueryEmbedding(ctx, vector, n, whereClause(filters), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: search: %w", err)
	}

	results = make([]vectorstore.SearchResult, 0, limit)
	for _, h := range hits {
		rec := toRecord(h.ID, h.Metadata, h.Embedding, h.Content)
		if !filters.Matches(rec.Payload) {
			continue
		}
		results = append(results, vectorstore.SearchResult{
			VectorRecord: rec,
			Score:        1 - float64(h.Similarity),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteVector removes id; absent ids are ignored.
func (s *Store) DeleteVector(ctx context.Context, id string) (err error) {
	ctx, done := s.begin(ctx, "delete_vector", id)
	defer func() { done(err, 0) }()

	if id == "" {
		return vectorstore.NewArgumentError("delete vector", "id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.active("delete vector")
	if err != nil {
		return err
	}
	if err := col.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("chromem: delete %q: %w", id, err)
	}
	delete(s.ids, id)
	return nil
}

// UpdateVector replaces the vector and/or the payload of id. A nil part is
// kept from the stored record. Updating only the payload of an absent
// record fails with a 404 ProtocolError since there is no vector to store.
func (s *Store) UpdateVector(ctx context.Context, id string, vector []float32, p payload.Payload) (err error) {
	ctx, done := s.begin(ctx, "update_vector", id)
	defer func() { done(err, 0) }()

	if id == "" {
		return vectorstore.NewArgumentError("update vector", "id is empty")
	}
	if vector == nil && p == nil {
		s.logger.Info("chromem: update without vector or payload, nothing to do", nil, map[string]interface{}{
			"id": id,
		})
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if vector != nil {
		if err := vectorstore.ValidateVector("chromem: update vector", vector, s.activeDims()); err != nil {
			return err
		}
	}
	col, err := s.active("update vector")
	if err != nil {
		return err
	}

	existing, found := s.lookup(ctx, col, id)
	switch {
	case found && vector == nil:
		vector = existing.Vector
	case !found && vector == nil:
		return &vectorstore.ProtocolError{
			Op:         "update vector",
			StatusCode: 404,
			Body:       fmt.Sprintf("record %q does not exist", id),
		}
	}
	if p == nil && found {
		p = existing.Payload
	}

	if err := col.AddDocument(ctx, newDocument(id, vector, p)); err != nil {
		return fmt.Errorf("chromem: update %q: %w", id, err)
	}
	s.ids[id] = struct{}{}
	return nil
}

// GetVector returns the record stored under id.
func (s *Store) GetVector(ctx context.Context, id string) (rec vectorstore.VectorRecord, found bool, err error) {
	ctx, done := s.begin(ctx, "get_vector", id)
	defer func() { done(err, 0) }()

	if id == "" {
		return rec, false, vectorstore.NewArgumentError("get vector", "id is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.active("get vector")
	if err != nil {
		return rec, false, err
	}
	rec, found = s.lookup(ctx, col, id)
	return rec, found, nil
}

// lookup treats any GetByID error as absence; chromem only fails on an
// empty or unknown id.
func (s *Store) lookup(ctx context.Context, col *chromem.Collection, id string) (vectorstore.VectorRecord, bool) {
	doc, err := col.GetByID(ctx, id)
	if err != nil {
		return vectorstore.VectorRecord{}, false
	}
	return toRecord(doc.ID, doc.Metadata, doc.Embedding, doc.Content), true
}

func (s *Store) ListCollections(ctx context.Context) (names []string, err error) {
	_, done := s.begin(ctx, "list_collections", "")
	defer func() { done(err, int64(len(names))) }()

	for name := range s.db.ListCollections() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteCollection drops name. Dropping the active collection leaves the
// store without one until ResetCollection recreates it.
func (s *Store) DeleteCollection(ctx context.Context, name string) (err error) {
	_, done := s.begin(ctx, "delete_collection", "")
	defer func() { done(err, 0) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(name)
}

func (s *Store) deleteLocked(name string) error {
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("chromem: delete collection %q: %w", name, err)
	}
	if name == s.cfg.CollectionName {
		s.ids = map[string]struct{}{}
	} else {
		delete(s.dims, name)
	}
	return nil
}

// ListVectors returns up to limit records matching filters, ordered by id.
func (s *Store) ListVectors(ctx context.Context, filters *vectorstore.FilterSet, limit int) (records []vectorstore.VectorRecord, err error) {
	ctx, done := s.begin(ctx, "list_vectors", "")
	defer func() { done(err, int64(len(records))) }()

	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = vectorstore.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.active("list vectors")
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records = []vectorstore.VectorRecord{}
	for _, id := range ids {
		rec, found := s.lookup(ctx, col, id)
		if !found || !filters.Matches(rec.Payload) {
			continue
		}
		records = append(records, rec)
		if len(records) == limit {
			break
		}
	}
	return records, nil
}

// ResetCollection drops and recreates the active collection with its
// recorded dimensionality.
func (s *Store) ResetCollection(ctx context.Context) (err error) {
	_, done := s.begin(ctx, "reset_collection", "")
	defer func() { done(err, 0) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	name, dims := s.cfg.CollectionName, s.activeDims()
	if err := s.deleteLocked(name); err != nil {
		s.logger.Warn("chromem: reset could not delete collection, recreating anyway", err, map[string]interface{}{
			"collection": name,
		})
	}
	return s.createLocked(name, dims)
}

// CollectionInfo describes the active collection.
func (s *Store) CollectionInfo(ctx context.Context) (info vectorstore.Collection, err error) {
	_, done := s.begin(ctx, "collection_info", "")
	defer func() { done(err, 0) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.active("collection info")
	if err != nil {
		return info, err
	}
	return vectorstore.Collection{
		Name:       col.Name,
		Dimensions: s.activeDims(),
		Metric:     metric,
		Count:      col.Count(),
	}, nil
}
