package chroma

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// fakeChroma is an in-memory stand-in for the Chroma REST API, enough to
// exercise every Store operation end to end.
type fakeChroma struct {
	mu          sync.Mutex
	collections map[string]*fakeCollection
	requests    []recordedRequest
	failures    map[string]fakeFailure
	nextID      int
	server      *httptest.Server
}

type fakeCollection struct {
	id       string
	name     string
	metadata map[string]any
	order    []string
	records  map[string]fakeRecord
}

type fakeRecord struct {
	embedding []float32
	metadata  payload.Payload
}

type recordedRequest struct {
	Route  string
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type fakeFailure struct {
	status int
	body   string
}

func newFakeChroma(t *testing.T) *fakeChroma {
	t.Helper()
	f := &fakeChroma{
		collections: map[string]*fakeCollection{},
		failures:    map[string]fakeFailure{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

// config returns a store configuration pointed at the fake.
func (f *fakeChroma) config() *Config {
	return FromEndpoint(f.server.URL)
}

// fail makes route answer with status and body until cleared.
func (f *fakeChroma) fail(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = fakeFailure{status: status, body: body}
}

func (f *fakeChroma) clearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = map[string]fakeFailure{}
}

func (f *fakeChroma) addCollection(name, space string) *fakeCollection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createLocked(name, space)
}

func (f *fakeChroma) createLocked(name, space string) *fakeCollection {
	f.nextID++
	c := &fakeCollection{
		id:       fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID),
		name:     name,
		metadata: map[string]any{spaceKey: space},
		records:  map[string]fakeRecord{},
	}
	f.collections[name] = c
	return c
}

func (f *fakeChroma) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeChroma) routes() []string {
	var out []string
	for _, r := range f.recorded() {
		out = append(out, r.Route)
	}
	return out
}

func (f *fakeChroma) last(route string) (recordedRequest, bool) {
	reqs := f.recorded()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Route == route {
			return reqs[i], true
		}
	}
	return recordedRequest{}, false
}

func (f *fakeChroma) lookupLocked(key string) *fakeCollection {
	if c, ok := f.collections[key]; ok {
		return c
	}
	for _, c := range f.collections {
		if c.id == key {
			return c
		}
	}
	return nil
}

func (f *fakeChroma) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	path := strings.TrimPrefix(r.URL.Path, DefaultBasePath)
	segments := strings.Split(strings.Trim(path, "/"), "/")

	route := "unknown"
	switch {
	case len(segments) == 1 && r.Method == http.MethodGet:
		route = "list"
	case len(segments) == 1 && r.Method == http.MethodPost:
		route = "create"
	case len(segments) == 2 && r.Method == http.MethodGet:
		route = "get_collection"
	case len(segments) == 2 && r.Method == http.MethodDelete:
		route = "delete_collection"
	case len(segments) == 3:
		route = segments[2]
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rec := recordedRequest{Route: route, Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}
	f.requests = append(f.requests, rec)

	if failure, ok := f.failures[route]; ok {
		w.WriteHeader(failure.status)
		_, _ = io.WriteString(w, failure.body)
		return
	}

	switch route {
	case "list":
		out := []map[string]any{}
		names := make([]string, 0, len(f.collections))
		for name := range f.collections {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, f.collections[name].describe())
		}
		writeJSON(w, http.StatusOK, out)

	case "create":
		var req createCollectionRequest
		_ = json.Unmarshal(raw, &req)
		if _, exists := f.collections[req.Name]; exists {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "UniqueConstraintError"})
			return
		}
		var space string
		_ = json.Unmarshal(req.Metadata[spaceKey], &space)
		c := f.createLocked(req.Name, space)
		writeJSON(w, http.StatusCreated, c.describe())

	case "get_collection":
		c := f.lookupLocked(segments[1])
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
			return
		}
		writeJSON(w, http.StatusOK, c.describe())

	case "delete_collection":
		c := f.collections[segments[1]]
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
			return
		}
		delete(f.collections, c.name)
		writeJSON(w, http.StatusOK, nil)

	default:
		c := f.lookupLocked(segments[1])
		if c == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "collection not found"})
			return
		}
		c.serve(w, route, raw)
	}
}

func (c *fakeCollection) describe() map[string]any {
	return map[string]any{"id": c.id, "name": c.name, "metadata": c.metadata}
}

func (c *fakeCollection) serve(w http.ResponseWriter, route string, raw []byte) {
	switch route {
	case "add":
		var req addRequest
		_ = json.Unmarshal(raw, &req)
		for i, id := range req.IDs {
			rec := fakeRecord{embedding: req.Embeddings[i]}
			if i < len(req.Metadatas) {
				rec.metadata = payload.Decode(req.Metadatas[i])
			}
			if _, exists := c.records[id]; !exists {
				c.order = append(c.order, id)
			}
			c.records[id] = rec
		}
		writeJSON(w, http.StatusCreated, true)

	case "upsert":
		var req upsertRequest
		_ = json.Unmarshal(raw, &req)
		for i, id := range req.IDs {
			rec, exists := c.records[id]
			if i < len(req.Embeddings) {
				rec.embedding = req.Embeddings[i]
			}
			if i < len(req.Metadatas) {
				rec.metadata = payload.Decode(req.Metadatas[i])
			}
			if !exists {
				c.order = append(c.order, id)
			}
			c.records[id] = rec
		}
		writeJSON(w, http.StatusOK, nil)

	case "delete":
		var req deleteRequest
		_ = json.Unmarshal(raw, &req)
		var deleted []string
		for _, id := range req.IDs {
			if _, ok := c.records[id]; ok {
				delete(c.records, id)
				deleted = append(deleted, id)
			}
		}
		kept := c.order[:0]
		for _, id := range c.order {
			if _, ok := c.records[id]; ok {
				kept = append(kept, id)
			}
		}
		c.order = kept
		writeJSON(w, http.StatusOK, deleted)

	case "get":
		var req struct {
			IDs   []string       `json:"ids"`
			Where map[string]any `json:"where"`
			Limit int            `json:"limit"`
		}
		_ = json.Unmarshal(raw, &req)
		ids := req.IDs
		if len(ids) == 0 {
			ids = c.order
		}
		resp := getResponse{IDs: []string{}}
		for _, id := range ids {
			rec, ok := c.records[id]
			if !ok || !matchWhere(req.Where, rec.metadata) {
				continue
			}
			if req.Limit > 0 && len(resp.IDs) == req.Limit {
				break
			}
			resp.IDs = append(resp.IDs, id)
			resp.Embeddings = append(resp.Embeddings, rec.embedding)
			resp.Metadatas = append(resp.Metadatas, encodeOrNil(rec.metadata))
		}
		writeJSON(w, http.StatusOK, resp)

	case "query":
		var req struct {
			QueryEmbeddings [][]float32    `json:"query_embeddings"`
			NResults        int            `json:"n_results"`
			Where           map[string]any `json:"where"`
		}
		_ = json.Unmarshal(raw, &req)

		type hit struct {
			id   string
			dist float64
		}
		var hits []hit
		for _, id := range c.order {
			rec := c.records[id]
			if !matchWhere(req.Where, rec.metadata) {
				continue
			}
			hits = append(hits, hit{id, distance(c.metadata[spaceKey], req.QueryEmbeddings[0], rec.embedding)})
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
		if len(hits) > req.NResults {
			hits = hits[:req.NResults]
		}

		ids, dists := []string{}, []float64{}
		metas, embs := []metadata{}, [][]float32{}
		for _, h := range hits {
			rec := c.records[h.id]
			ids = append(ids, h.id)
			dists = append(dists, h.dist)
			metas = append(metas, encodeOrNil(rec.metadata))
			embs = append(embs, rec.embedding)
		}
		writeJSON(w, http.StatusOK, queryResponse{
			IDs:        [][]string{ids},
			Distances:  [][]float64{dists},
			Metadatas:  [][]metadata{metas},
			Embeddings: [][][]float32{embs},
		})

	case "count":
		writeJSON(w, http.StatusOK, len(c.records))

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown route " + route})
	}
}

func encodeOrNil(p payload.Payload) metadata {
	if len(p) == 0 {
		return nil
	}
	return payload.Encode(p)
}

func distance(space any, a, b []float32) float64 {
	var dot, na, nb, sq float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		sq += (x - y) * (x - y)
	}
	switch space {
	case "cosine":
		if na == 0 || nb == 0 {
			return 1
		}
		return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	case "ip":
		return 1 - dot
	default:
		return sq
	}
}

// matchWhere evaluates a Chroma where clause against stored metadata.
func matchWhere(where map[string]any, p payload.Payload) bool {
	for key, arg := range where {
		switch key {
		case "$and":
			for _, sub := range arg.([]any) {
				if !matchWhere(sub.(map[string]any), p) {
					return false
				}
			}
		case "$or":
			matched := false
			for _, sub := range arg.([]any) {
				if matchWhere(sub.(map[string]any), p) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		default:
			v, ok := p[key]
			if !ok {
				return false
			}
			for op, operand := range arg.(map[string]any) {
				if !compare(v.Native(), op, operand) {
					return false
				}
			}
		}
	}
	return true
}

func compare(actual any, op string, operand any) bool {
	switch op {
	case "$eq":
		return looseEqual(actual, operand)
	case "$ne":
		return !looseEqual(actual, operand)
	case "$in", "$nin":
		found := false
		for _, o := range operand.([]any) {
			if looseEqual(actual, o) {
				found = true
			}
		}
		return found == (op == "$in")
	default:
		a, aok := toFloat(actual)
		b, bok := toFloat(operand)
		if !aok || !bok {
			return false
		}
		switch op {
		case "$gt":
			return a > b
		case "$gte":
			return a >= b
		case "$lt":
			return a < b
		case "$lte":
			return a <= b
		}
	}
	return false
}

func looseEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
