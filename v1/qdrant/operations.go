package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sort"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// ── Collections ──────────────────────────────────────────────────────────────

// EnsureCollection creates the active collection when missing. For an
// existing collection the store adopts its vector size and metric.
func (s *Store) EnsureCollection(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, "ensure_collection", "")
	defer func() { done(err, 0) }()

	name := s.cfg.CollectionName
	names, err := s.api.ListCollections(ctx)
	if err != nil {
		return mapError("qdrant: list collections", err)
	}

	if !slices.Contains(names, name) {
		s.logger.Info("qdrant: collection not found, creating it", nil, map[string]interface{}{
			"collection": name,
		})
		return s.createCollection(ctx, name, s.dimensions(), s.activeMetric())
	}

	info, err := s.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return mapError("qdrant: get collection", err)
	}
	size, metric := extractVectorDetails(info)

	s.mu.Lock()
	configured := s.dims
	if size > 0 {
		s.dims = size
	}
	if metric != "" {
		s.metric = metric
	}
	s.mu.Unlock()

	if configured > 0 && size > 0 && configured != size {
		s.logger.Warn("qdrant: collection vector size differs from configuration", nil, map[string]interface{}{
			"collection": name,
			"configured": configured,
			"actual":     size,
		})
	}
	s.logger.Debug("qdrant: using existing collection", nil, map[string]interface{}{
		"collection": name,
		"size":       size,
		"metric":     string(metric),
	})
	return nil
}

// CreateCollection creates a collection unless it already exists. Qdrant
// needs a positive vector size.
func (s *Store) CreateCollection(ctx context.Context, name string, dims int, metric vectorstore.DistanceMetric) (err error) {
	ctx, done := s.begin(ctx, "create_collection", "")
	defer func() { done(err, 0) }()

	return s.createCollection(ctx, name, dims, metric)
}

func (s *Store) createCollection(ctx context.Context, name string, dims int, metric vectorstore.DistanceMetric) error {
	const op = "qdrant: create collection"

	if name == "" {
		return vectorstore.NewArgumentError(op, "collection name is empty")
	}
	if dims <= 0 {
		return vectorstore.NewArgumentError(op, "qdrant needs a positive vector size")
	}
	if metric == "" {
		metric = s.cfg.Metric
	}
	metric, err := vectorstore.ParseDistanceMetric(string(metric))
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.api.CollectionExists(ctx, name)
	if err != nil {
		return mapError(op, err)
	}
	if !exists {
		err = mapError(op, s.api.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dims),
				Distance: toQdrantDistance(metric),
			}),
		}))
		switch {
		case err == nil:
			s.logger.Info("qdrant: collection created", nil, map[string]interface{}{
				"collection": name,
				"size":       dims,
				"metric":     string(metric),
			})
		case vectorstore.StatusCode(err) != http.StatusConflict:
			return err
		}
	}

	if name == s.cfg.CollectionName {
		s.mu.Lock()
		s.dims = dims
		s.metric = metric
		s.mu.Unlock()
	}
	return nil
}

// ListCollections returns the names of all collections.
func (s *Store) ListCollections(ctx context.Context) (names []string, err error) {
	ctx, done := s.begin(ctx, "list_collections", "")
	defer func() { done(err, int64(len(names))) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	names, err = s.api.ListCollections(ctx)
	if err != nil {
		return nil, mapError("qdrant: list collections", err)
	}
	return names, nil
}

// DeleteCollection drops a collection. An absent collection is success.
func (s *Store) DeleteCollection(ctx context.Context, name string) (err error) {
	ctx, done := s.begin(ctx, "delete_collection", "")
	defer func() { done(err, 0) }()

	return s.deleteCollection(ctx, name)
}

func (s *Store) deleteCollection(ctx context.Context, name string) error {
	const op = "qdrant: delete collection"

	if name == "" {
		return vectorstore.NewArgumentError(op, "collection name is empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := mapError(op, s.api.DeleteCollection(ctx, name))
	if err != nil && vectorstore.StatusCode(err) != http.StatusNotFound {
		return err
	}
	return nil
}

// ResetCollection drops the active collection and recreates it with the
// same vector size and metric.
func (s *Store) ResetCollection(ctx context.Context) (err error) {
	ctx, done := s.begin(ctx, "reset_collection", "")
	defer func() { done(err, 0) }()

	name := s.cfg.CollectionName
	if err := s.deleteCollection(ctx, name); err != nil {
		s.logger.Warn("qdrant: reset could not delete collection, recreating anyway", err, map[string]interface{}{
			"collection": name,
		})
	}
	return s.createCollection(ctx, name, s.dimensions(), s.activeMetric())
}

// CollectionInfo describes the active collection including its exact point
// count.
func (s *Store) CollectionInfo(ctx context.Context) (info vectorstore.Collection, err error) {
	ctx, done := s.begin(ctx, "collection_info", "")
	defer func() { done(err, 0) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	name := s.cfg.CollectionName
	ci, err := s.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return info, mapError("qdrant: get collection", err)
	}
	size, metric := extractVectorDetails(ci)

	count, err := s.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return info, mapError("qdrant: count", err)
	}

	return vectorstore.Collection{
		Name:       name,
		Dimensions: size,
		Metric:     metric,
		Count:      int(count),
	}, nil
}

// ── Records ──────────────────────────────────────────────────────────────────

// Insert upserts records in batches of defaultBatchSize.
func (s *Store) Insert(ctx context.Context, vectors [][]float32, payloads []payload.Payload, ids []string) (err error) {
	ctx, done := s.begin(ctx, "insert", "")
	defer func() { done(err, int64(len(ids))) }()

	const op = "qdrant: insert"

	if err := vectorstore.ValidateInsert(op, vectors, payloads, ids, s.dimensions()); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(ids))
	for i, id := range ids {
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: toQdrantPayload(id, payloads[i]),
		})
	}

	for start := 0; start < len(points); start += defaultBatchSize {
		end := min(start+defaultBatchSize, len(points))
		if err := s.upsert(ctx, points[start:end]); err != nil {
			return fmt.Errorf("%s: batch [%d:%d]: %w", op, start, end, err)
		}
	}

	s.logger.Debug("qdrant: inserted vectors", nil, map[string]interface{}{
		"collection": s.cfg.CollectionName,
		"count":      len(ids),
	})
	return nil
}

const defaultBatchSize = 200

func (s *Store) upsert(ctx context.Context, points []*qdrant.PointStruct) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.CollectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	return mapError("qdrant: upsert", err)
}

// Search returns up to limit records nearest to vector in ascending distance
// order. query is ignored.
func (s *Store) Search(ctx context.Context, query string, vector []float32, limit int, filters *vectorstore.FilterSet) (results []vectorstore.SearchResult, err error) {
	ctx, done := s.begin(ctx, "search", "")
	defer func() { done(err, int64(len(results))) }()

	const op = "qdrant: search"

	if limit <= 0 {
		return nil, vectorstore.NewArgumentError(op, "limit must be greater than 0")
	}
	if err := vectorstore.ValidateVector(op, vector, s.dimensions()); err != nil {
		return nil, err
	}
	filter, err := buildFilter(filters)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	points, err := s.api.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, mapError(op, err)
	}

	results, err = parseSearchResults(s.activeMetric(), points)
	if err != nil {
		return nil, &vectorstore.CodecError{Op: op, Err: err}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	return results, nil
}

// DeleteVector removes a record. Deleting an absent id succeeds.
func (s *Store) DeleteVector(ctx context.Context, id string) (err error) {
	ctx, done := s.begin(ctx, "delete_vector", id)
	defer func() { done(err, 1) }()

	const op = "qdrant: delete vector"

	if id == "" {
		return vectorstore.NewArgumentError(op, "id is empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.cfg.CollectionName,
		Points:         selectPoints(id),
		Wait:           qdrant.PtrOf(true),
	})
	return mapError(op, err)
}

// UpdateVector replaces the vector and/or payload of id. With both set the
// point is upserted; with one set only that part is overwritten, which
// requires the point to exist. With neither it logs and returns.
func (s *Store) UpdateVector(ctx context.Context, id string, vector []float32, p payload.Payload) (err error) {
	ctx, done := s.begin(ctx, "update_vector", id)
	defer func() { done(err, 1) }()

	const op = "qdrant: update vector"

	if id == "" {
		return vectorstore.NewArgumentError(op, "id is empty")
	}
	if vector == nil && p == nil {
		s.logger.Info("qdrant: update without vector or payload, nothing to do", nil, map[string]interface{}{
			"collection": s.cfg.CollectionName,
			"id":         id,
		})
		return nil
	}
	if vector != nil {
		if err := vectorstore.ValidateVector(op, vector, s.dimensions()); err != nil {
			return err
		}
	}

	if vector != nil && p != nil {
		return s.upsert(ctx, []*qdrant.PointStruct{{
			Id:      pointID(id),
			Vectors: qdrant.NewVectors(vector...),
			Payload: toQdrantPayload(id, p),
		}})
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if vector != nil {
		_, err = s.api.UpdateVectors(ctx, &qdrant.UpdatePointVectors{
			CollectionName: s.cfg.CollectionName,
			Points: []*qdrant.PointVectors{{
				Id:      pointID(id),
				Vectors: qdrant.NewVectors(vector...),
			}},
			Wait: qdrant.PtrOf(true),
		})
		return mapError(op, err)
	}

	_, err = s.api.OverwritePayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: s.cfg.CollectionName,
		Payload:        toQdrantPayload(id, p),
		PointsSelector: selectPoints(id),
		Wait:           qdrant.PtrOf(true),
	})
	return mapError(op, err)
}

// GetVector fetches one record by id. The boolean is false when absent.
func (s *Store) GetVector(ctx context.Context, id string) (record vectorstore.VectorRecord, found bool, err error) {
	ctx, done := s.begin(ctx, "get_vector", id)
	defer func() {
		size := int64(0)
		if found {
			size = 1
		}
		done(err, size)
	}()

	const op = "qdrant: get vector"

	if id == "" {
		return record, false, vectorstore.NewArgumentError(op, "id is empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	points, err := s.api.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.cfg.CollectionName,
		Ids:            []*qdrant.PointId{pointID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return record, false, mapError(op, err)
	}
	records, err := toRecords(points)
	if err != nil {
		return record, false, &vectorstore.CodecError{Op: op, Err: err}
	}
	if len(records) == 0 {
		return record, false, nil
	}
	return records[0], true, nil
}

// ListVectors scrolls up to limit records matching filters. A limit <= 0
// selects vectorstore.DefaultListLimit.
func (s *Store) ListVectors(ctx context.Context, filters *vectorstore.FilterSet, limit int) (records []vectorstore.VectorRecord, err error) {
	ctx, done := s.begin(ctx, "list_vectors", "")
	defer func() { done(err, int64(len(records))) }()

	const op = "qdrant: list vectors"

	if limit <= 0 {
		limit = vectorstore.DefaultListLimit
	}
	filter, err := buildFilter(filters)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	points, err := s.api.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.cfg.CollectionName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, mapError(op, err)
	}
	records, err = toRecords(points)
	if err != nil {
		return nil, &vectorstore.CodecError{Op: op, Err: err}
	}
	return records, nil
}

func selectPoints(ids ...string) *qdrant.PointsSelector {
	pids := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pids = append(pids, pointID(id))
	}
	return &qdrant.PointsSelector{
		PointsSelectorOneOf: &qdrant.PointsSelector_Points{
			Points: &qdrant.PointsIdsList{Ids: pids},
		},
	}
}
