package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// ════════════════════════════════════════════════════════════════════════════
// Collections
// ════════════════════════════════════════════════════════════════════════════

// CreateCollection ensures a collection exists. 200 and 201 (created) and
// 409 (already exists) are success. When name is the active collection the
// store records dims and metric and becomes Ready.
func (s *Store) CreateCollection(ctx context.Context, name string, dims int, metric vectorstore.DistanceMetric) (err error) {
	ctx, done := s.begin(ctx, "create_collection", "")
	defer func() { done(err, 0) }()

	return s.createCollection(ctx, name, dims, metric)
}

func (s *Store) createCollection(ctx context.Context, name string, dims int, metric vectorstore.DistanceMetric) error {
	const op = "chroma: create collection"

	if name == "" {
		return vectorstore.NewArgumentError(op, "collection name is empty")
	}
	if dims < 0 {
		return vectorstore.NewArgumentError(op, "dimensionality is negative")
	}
	if metric == "" {
		metric = s.cfg.Metric
	}
	if _, err := vectorstore.ParseDistanceMetric(string(metric)); err != nil {
		return err
	}

	space, _ := json.Marshal(string(metric))
	resp, err := s.exec.Do(ctx, http.MethodPost, "/collections", createCollectionRequest{
		Name:     name,
		Metadata: metadata{spaceKey: space},
	})
	if err != nil {
		return err
	}

	var created collectionResponse
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if err := decode(op, resp, &created); err != nil {
			return err
		}
		s.logger.Info("chroma: collection created", nil, map[string]interface{}{
			"collection": name,
			"id":         created.ID,
			"metric":     string(metric),
		})
	case http.StatusConflict:
		s.logger.Debug("chroma: collection already exists", nil, map[string]interface{}{
			"collection": name,
		})
	default:
		return protocolError(op, resp)
	}

	if name != s.cfg.CollectionName {
		return nil
	}

	if s.cfg.EmbeddingDims > 0 && dims > 0 && dims != s.cfg.EmbeddingDims {
		s.logger.Warn("chroma: requested dimensionality differs from configuration", nil, map[string]interface{}{
			"collection": name,
			"configured": s.cfg.EmbeddingDims,
			"requested":  dims,
		})
	}

	s.mu.Lock()
	if dims > 0 {
		s.dims = dims
	}
	s.metric = metric
	s.mu.Unlock()

	id := created.ID
	if id == "" {
		if existing, err := s.getCollection(ctx, name); err == nil {
			id = existing.ID
		} else {
			s.logger.Debug("chroma: could not resolve collection id, addressing by name", err, map[string]interface{}{
				"collection": name,
			})
		}
	}
	s.markReady(id)
	return nil
}

// ListCollections returns the names of all collections on the server.
func (s *Store) ListCollections(ctx context.Context) (names []string, err error) {
	ctx, done := s.begin(ctx, "list_collections", "")
	defer func() { done(err, int64(len(names))) }()

	collections, err := s.listCollections(ctx)
	if err != nil {
		return nil, err
	}
	names = make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *Store) listCollections(ctx context.Context) ([]collectionResponse, error) {
	const op = "chroma: list collections"

	resp, err := s.exec.Do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(op, resp, http.StatusOK); err != nil {
		return nil, err
	}

	var collections []collectionResponse
	if err := decode(op, resp, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *Store) getCollection(ctx context.Context, name string) (collectionResponse, error) {
	const op = "chroma: get collection"

	var c collectionResponse
	resp, err := s.exec.Do(ctx, http.MethodGet, "/collections/"+url.PathEscape(name), nil)
	if err != nil {
		return c, err
	}
	if err := expectStatus(op, resp, http.StatusOK); err != nil {
		return c, err
	}
	err = decode(op, resp, &c)
	return c, err
}

// DeleteCollection drops a collection by name. 404 (absent) is success.
// Dropping the active collection leaves the store Absent until the
// collection is created again.
func (s *Store) DeleteCollection(ctx context.Context, name string) (err error) {
	ctx, done := s.begin(ctx, "delete_collection", "")
	defer func() { done(err, 0) }()

	return s.deleteCollection(ctx, name)
}

func (s *Store) deleteCollection(ctx context.Context, name string) error {
	const op = "chroma: delete collection"

	if name == "" {
		return vectorstore.NewArgumentError(op, "collection name is empty")
	}

	resp, err := s.exec.Do(ctx, http.MethodDelete, "/collections/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}
	if err := expectStatus(op, resp, http.StatusOK, http.StatusNotFound); err != nil {
		return err
	}

	if name == s.cfg.CollectionName {
		s.mu.Lock()
		s.state = StateAbsent
		s.collectionID = ""
		s.mu.Unlock()
	}
	return nil
}

// ResetCollection drops the active collection and recreates it under the
// same name, dimensionality and metric. A failed drop is logged and the
// recreate still runs.
func (s *Store) ResetCollection(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, "reset_collection", "")
	defer func() { done(err, 0) }()

	name := s.cfg.CollectionName
	s.logger.Info("chroma: resetting collection", nil, map[string]interface{}{
		"collection": name,
	})

	if err := s.deleteCollection(ctx, name); err != nil {
		s.logger.Warn("chroma: reset could not delete collection, recreating anyway", err, map[string]interface{}{
			"collection": name,
		})
	}

	s.mu.Lock()
	s.state = StateProbing
	dims, metric := s.dims, s.metric
	s.mu.Unlock()

	if err := s.createCollection(ctx, name, dims, metric); err != nil {
		s.setState(StateUnknown)
		return err
	}
	return nil
}

// CollectionInfo describes the active collection, including its record
// count.
func (s *Store) CollectionInfo(ctx context.Context) (info vectorstore.Collection, err error) {
	ctx, done := s.begin(ctx, "collection_info", "")
	defer func() { done(err, 0) }()

	const op = "chroma: collection count"

	c, err := s.getCollection(ctx, s.cfg.CollectionName)
	if err != nil {
		return info, err
	}
	if c.ID != "" {
		s.markReady(c.ID)
	}

	s.mu.RLock()
	info = vectorstore.Collection{
		Name:       s.cfg.CollectionName,
		Dimensions: s.dims,
		Metric:     s.metric,
	}
	s.mu.RUnlock()

	if c.Dimension != nil && *c.Dimension > 0 {
		info.Dimensions = *c.Dimension
	}
	if raw, ok := c.Metadata[spaceKey]; ok {
		var space string
		if json.Unmarshal(raw, &space) == nil {
			if m, err := vectorstore.ParseDistanceMetric(space); err == nil {
				info.Metric = m
			}
		}
	}

	resp, err := s.exec.Do(ctx, http.MethodGet, s.collectionPath()+"/count", nil)
	if err != nil {
		return info, err
	}
	if err := expectStatus(op, resp, http.StatusOK); err != nil {
		return info, err
	}
	count, err := strconv.Atoi(string(trimSpace(resp.Body)))
	if err != nil {
		return info, &vectorstore.CodecError{Op: op, Body: string(resp.Body), Err: err}
	}
	info.Count = count
	return info, nil
}

// ════════════════════════════════════════════════════════════════════════════
// Records
// ════════════════════════════════════════════════════════════════════════════

// Insert adds records to the active collection. Slices must be non-empty
// and of equal length, and vectors must match the known dimensionality.
// Invalid input fails with an ArgumentError before any request is sent.
func (s *Store) Insert(ctx context.Context, vectors [][]float32, payloads []payload.Payload, ids []string) (err error) {
	ctx, done := s.begin(ctx, "insert", "")
	defer func() { done(err, int64(len(ids))) }()

	const op = "chroma: insert"

	if err := vectorstore.ValidateInsert(op, vectors, payloads, ids, s.dimensions()); err != nil {
		return err
	}
	if err := s.ready(op); err != nil {
		return err
	}

	req := addRequest{
		IDs:        ids,
		Embeddings: vectors,
		Metadatas:  encodeMetadatas(payloads),
	}

	resp, err := s.exec.Do(ctx, http.MethodPost, s.collectionPath()+"/add", req)
	if err != nil {
		return err
	}
	if err := expectStatus(op, resp, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}

	s.logger.Debug("chroma: inserted vectors", nil, map[string]interface{}{
		"collection": s.cfg.CollectionName,
		"count":      len(ids),
	})
	return nil
}

// Search returns up to limit records nearest to vector in ascending
// distance order. query is ignored.
func (s *Store) Search(ctx context.Context, query string, vector []float32, limit int, filters *vectorstore.FilterSet) (results []vectorstore.SearchResult, err error) {
	ctx, done := s.begin(ctx, "search", "")
	defer func() { done(err, int64(len(results))) }()

	const op = "chroma: search"

	if limit <= 0 {
		return nil, vectorstore.NewArgumentError(op, "limit must be greater than 0")
	}
	if err := vectorstore.ValidateVector(op, vector, s.dimensions()); err != nil {
		return nil, err
	}
	where, err := buildWhere(filters)
	if err != nil {
		return nil, err
	}
	if err := s.ready(op); err != nil {
		return nil, err
	}

	resp, err := s.exec.Do(ctx, http.MethodPost, s.collectionPath()+"/query", queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        limit,
		Include:         queryInclude,
		Where:           where,
	})
	if err != nil {
		return nil, err
	}
	if err := expectStatus(op, resp, http.StatusOK); err != nil {
		return nil, err
	}

	var qr queryResponse
	if err := decode(op, resp, &qr); err != nil {
		return nil, err
	}

	results, err = unwrapQuery(op, resp, qr)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// unwrapQuery takes the result list of the single query embedding.
func unwrapQuery(op string, resp *Response, qr queryResponse) ([]vectorstore.SearchResult, error) {
	if len(qr.IDs) == 0 {
		return []vectorstore.SearchResult{}, nil
	}

	ids := qr.IDs[0]
	var distances []float64
	if len(qr.Distances) > 0 {
		distances = qr.Distances[0]
	}
	if len(distances) != len(ids) {
		return nil, &vectorstore.CodecError{
			Op:   op,
			Body: string(resp.Body),
			Err:  errColumnMismatch("distances", len(distances), len(ids)),
		}
	}

	var metas []metadata
	if len(qr.Metadatas) > 0 {
		metas = qr.Metadatas[0]
	}
	var embeddings [][]float32
	if len(qr.Embeddings) > 0 {
		embeddings = qr.Embeddings[0]
	}

	results := make([]vectorstore.SearchResult, 0, len(ids))
	for i, id := range ids {
		results = append(results, vectorstore.SearchResult{
			VectorRecord: vectorstore.VectorRecord{
				ID:      id,
				Vector:  at(embeddings, i),
				Payload: payload.Decode(at(metas, i)),
			},
			Score: distances[i],
		})
	}
	return results, nil
}

// DeleteVector removes a record. Deleting an absent id succeeds.
func (s *Store) DeleteVector(ctx context.Context, id string) (err error) {
	ctx, done := s.begin(ctx, "delete_vector", id)
	defer func() { done(err, 1) }()

	const op = "chroma: delete vector"

	if id == "" {
		return vectorstore.NewArgumentError(op, "id is empty")
	}
	if err := s.ready(op); err != nil {
		return err
	}

	resp, err := s.exec.Do(ctx, http.MethodPost, s.collectionPath()+"/delete", deleteRequest{IDs: []string{id}})
	if err != nil {
		return err
	}
	return expectStatus(op, resp, http.StatusOK)
}

// UpdateVector upserts the vector and/or payload of id. With both nil it
// logs and returns without a request.
func (s *Store) UpdateVector(ctx context.Context, id string, vector []float32, p payload.Payload) (err error) {
	ctx, done := s.begin(ctx, "update_vector", id)
	defer func() { done(err, 1) }()

	const op = "chroma: update vector"

	if id == "" {
		return vectorstore.NewArgumentError(op, "id is empty")
	}
	if vector == nil && p == nil {
		s.logger.Info("chroma: update without vector or payload, nothing to do", nil, map[string]interface{}{
			"collection": s.cfg.CollectionName,
			"id":         id,
		})
		return nil
	}

	req := upsertRequest{IDs: []string{id}}
	if vector != nil {
		if err := vectorstore.ValidateVector(op, vector, s.dimensions()); err != nil {
			return err
		}
		req.Embeddings = [][]float32{vector}
	}
	if p != nil {
		req.Metadatas = []metadata{payload.Encode(p)}
	}
	if err := s.ready(op); err != nil {
		return err
	}

	resp, err := s.exec.Do(ctx, http.MethodPost, s.collectionPath()+"/upsert", req)
	if err != nil {
		return err
	}
	return expectStatus(op, resp, http.StatusOK)
}

// GetVector fetches one record by id. The boolean is false when the id is
// absent.
func (s *Store) GetVector(ctx context.Context, id string) (record vectorstore.VectorRecord, found bool, err error) {
	ctx, done := s.begin(ctx, "get_vector", id)
	defer func() {
		size := int64(0)
		if found {
			size = 1
		}
		done(err, size)
	}()

	const op = "chroma: get vector"

	if id == "" {
		return record, false, vectorstore.NewArgumentError(op, "id is empty")
	}

	records, err := s.get(ctx, op, getRequest{IDs: []string{id}, Include: getInclude})
	if err != nil {
		return record, false, err
	}
	if len(records) == 0 {
		return record, false, nil
	}
	return records[0], true, nil
}

// ListVectors returns up to limit records of the active collection that
// match filters. A limit <= 0 selects vectorstore.DefaultListLimit.
func (s *Store) ListVectors(ctx context.Context, filters *vectorstore.FilterSet, limit int) (records []vectorstore.VectorRecord, err error) {
	ctx, done := s.begin(ctx, "list_vectors", "")
	defer func() { done(err, int64(len(records))) }()

	const op = "chroma: list vectors"

	if limit <= 0 {
		limit = vectorstore.DefaultListLimit
	}
	where, err := buildWhere(filters)
	if err != nil {
		return nil, err
	}

	return s.get(ctx, op, getRequest{Where: where, Limit: limit, Include: getInclude})
}

func (s *Store) get(ctx context.Context, op string, req getRequest) ([]vectorstore.VectorRecord, error) {
	if err := s.ready(op); err != nil {
		return nil, err
	}

	resp, err := s.exec.Do(ctx, http.MethodPost, s.collectionPath()+"/get", req)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(op, resp, http.StatusOK); err != nil {
		return nil, err
	}

	var gr getResponse
	if err := decode(op, resp, &gr); err != nil {
		return nil, err
	}

	records := make([]vectorstore.VectorRecord, 0, len(gr.IDs))
	for i, id := range gr.IDs {
		records = append(records, vectorstore.VectorRecord{
			ID:      id,
			Vector:  at(gr.Embeddings, i),
			Payload: payload.Decode(at(gr.Metadatas, i)),
		})
	}
	return records, nil
}

// ════════════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════════════

// collectionPath addresses the active collection by id when known and by
// name otherwise.
func (s *Store) collectionPath() string {
	s.mu.RLock()
	key := s.collectionID
	s.mu.RUnlock()
	if key == "" {
		key = s.cfg.CollectionName
	}
	return "/collections/" + url.PathEscape(key)
}

func (s *Store) dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// encodeMetadatas encodes one metadata object per payload. Empty payloads
// are sent as null and the field is omitted when all are empty.
func encodeMetadatas(payloads []payload.Payload) []metadata {
	out := make([]metadata, len(payloads))
	hasMetadata := false
	for i, p := range payloads {
		if len(p) == 0 {
			continue
		}
		enc := payload.Encode(p)
		if len(enc) == 0 {
			continue
		}
		out[i] = enc
		hasMetadata = true
	}
	if !hasMetadata {
		return nil
	}
	return out
}

// ready fails with ErrNotReady while the active collection is known to be
// absent. Unknown state still addresses the collection by name so the
// server's own error surfaces.
func (s *Store) ready(op string) error {
	if s.State() == StateAbsent {
		return fmt.Errorf("%s: %w", op, vectorstore.ErrNotReady)
	}
	return nil
}
