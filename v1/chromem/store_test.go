package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

type recordingObserver struct {
	ops []string
}

func (o *recordingObserver) ObserveOperation(op observability.OperationContext) {
	o.ops = append(o.ops, op.Operation)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(DefaultConfig().WithEmbeddingDims(3), nil)
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(),
		[][]float32{{1, 0, 0}, {0.8, 0.6, 0}, {0, 0, 2}},
		[]payload.Payload{
			{"user_id": payload.String("alice"), "turn": payload.Int(1)},
			{"user_id": payload.String("alice"), "turn": payload.Int(2), "pinned": payload.Bool(true)},
			{"user_id": payload.String("bob"), "turn": payload.Float(3)},
		},
		[]string{"m1", "m2", "m3"},
	))
}

func TestInsertAndGetKeepRawVectorAndKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := payload.Payload{
		"user_id": payload.String("alice"),
		"turn":    payload.Int(3),
		"whole":   payload.Float(2),
		"pinned":  payload.Bool(false),
		"tags":    payload.Opaque(`["a","b"]`),
		"gone":    payload.Null(),
	}
	require.NoError(t, s.Insert(ctx, [][]float32{{3, 4, 0}}, []payload.Payload{p}, []string{"m1"}))

	rec, found, err := s.GetVector(ctx, "m1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float32{3, 4, 0}, rec.Vector)
	assert.Equal(t, payload.KindFloat, rec.Payload["whole"].Kind())
	assert.NotContains(t, rec.Payload, "gone")

	delete(p, "gone")
	assert.True(t, p.Equal(rec.Payload), "got %v", rec.Payload)

	_, found, err = s.GetVector(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	results, err := s.Search(ctx, "", []float32{1, 0, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"m1", "m2", "m3"}, []string{results[0].ID, results[1].ID, results[2].ID})
	assert.InDelta(t, 0.0, results[0].Score, 1e-5)
	assert.InDelta(t, 0.2, results[1].Score, 1e-5)
	assert.InDelta(t, 1.0, results[2].Score, 1e-5)

	t.Run("limit", func(t *testing.T) {
		results, err := s.Search(ctx, "", []float32{1, 0, 0}, 1, nil)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "m1", results[0].ID)
	})

	t.Run("pushed down equality", func(t *testing.T) {
		results, err := s.Search(ctx, "", []float32{1, 0, 0}, 5, vectorstore.Equals(map[string]any{"user_id": "bob"}))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "m3", results[0].ID)
	})

	t.Run("numeric equality spans int and float", func(t *testing.T) {
		results, err := s.Search(ctx, "", []float32{1, 0, 0}, 5, vectorstore.Equals(map[string]any{"turn": 3}))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "m3", results[0].ID)
	})

	t.Run("post filtered clauses respect limit", func(t *testing.T) {
		fs := vectorstore.NewFilterSet(
			vectorstore.Must(vectorstore.NewNumericRange("turn", vectorstore.NumericRange{Gte: vectorstore.Float64(2)})),
			vectorstore.MustNot(vectorstore.NewMatch("pinned", true)),
		)
		results, err := s.Search(ctx, "", []float32{1, 0, 0}, 1, fs)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "m3", results[0].ID)
	})
}

func TestSearchOnEmptyCollection(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(context.Background(), "", []float32{1, 0, 0}, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestArgumentErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"insert length mismatch", func() error {
			return s.Insert(ctx, [][]float32{{1, 0, 0}}, nil, []string{"a"})
		}},
		{"insert wrong dims", func() error {
			return s.Insert(ctx, [][]float32{{1, 0}}, []payload.Payload{nil}, []string{"a"})
		}},
		{"search zero limit", func() error {
			_, err := s.Search(ctx, "", []float32{1, 0, 0}, 0, nil)
			return err
		}},
		{"search wrong dims", func() error {
			_, err := s.Search(ctx, "", []float32{1}, 1, nil)
			return err
		}},
		{"empty range", func() error {
			_, err := s.ListVectors(ctx, vectorstore.NewFilterSet(vectorstore.Must(
				vectorstore.NewNumericRange("turn", vectorstore.NumericRange{}))), 0)
			return err
		}},
		{"unsupported metric", func() error {
			return s.CreateCollection(ctx, "other", 3, vectorstore.L2)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, vectorstore.IsInvalidArgument(tt.call()))
		})
	}
}

func TestUpdateVector(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	t.Run("payload only keeps vector", func(t *testing.T) {
		require.NoError(t, s.UpdateVector(ctx, "m1", nil, payload.Payload{"user_id": payload.String("carol")}))
		rec, _, err := s.GetVector(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, rec.Vector)
		assert.True(t, payload.Payload{"user_id": payload.String("carol")}.Equal(rec.Payload))
	})

	t.Run("vector only keeps payload", func(t *testing.T) {
		require.NoError(t, s.UpdateVector(ctx, "m2", []float32{0, 1, 0}, nil))
		rec, _, err := s.GetVector(ctx, "m2")
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 1, 0}, rec.Vector)
		assert.Equal(t, "alice", rec.Payload["user_id"].String())
	})

	t.Run("neither is a no-op", func(t *testing.T) {
		require.NoError(t, s.UpdateVector(ctx, "m3", nil, nil))
	})

	t.Run("vector on absent id upserts", func(t *testing.T) {
		require.NoError(t, s.UpdateVector(ctx, "m4", []float32{0, 1, 1}, payload.Payload{"k": payload.Int(1)}))
		_, found, err := s.GetVector(ctx, "m4")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("payload on absent id is not found", func(t *testing.T) {
		err := s.UpdateVector(ctx, "m9", nil, payload.Payload{"k": payload.Int(1)})
		require.True(t, vectorstore.IsProtocolError(err))
		assert.Equal(t, 404, vectorstore.StatusCode(err))
	})
}

func TestDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	records, err := s.ListVectors(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, err = s.ListVectors(ctx, vectorstore.Equals(map[string]any{"user_id": "alice"}), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].ID)

	require.NoError(t, s.DeleteVector(ctx, "m1"))
	require.NoError(t, s.DeleteVector(ctx, "m1"))

	records, err = s.ListVectors(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	info, err := s.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, vectorstore.Collection{Name: DefaultCollectionName, Dimensions: 3, Metric: vectorstore.Cosine, Count: 2}, info)
}

func TestCollectionLifecycle(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.CreateCollection(ctx, "scratch", 3, vectorstore.Cosine))
	require.NoError(t, s.CreateCollection(ctx, "scratch", 3, ""))

	names, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCollectionName, "scratch"}, names)

	require.NoError(t, s.DeleteCollection(ctx, "scratch"))
	require.NoError(t, s.DeleteCollection(ctx, "scratch"))

	require.NoError(t, s.ResetCollection(ctx))
	records, err := s.ListVectors(ctx, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	info, err := s.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Dimensions)

	t.Run("dropping the active collection", func(t *testing.T) {
		require.NoError(t, s.DeleteCollection(ctx, DefaultCollectionName))
		err := s.Insert(ctx, [][]float32{{1, 0, 0}}, []payload.Payload{nil}, []string{"x"})
		assert.Equal(t, 404, vectorstore.StatusCode(err))

		require.NoError(t, s.ResetCollection(ctx))
		require.NoError(t, s.Insert(ctx, [][]float32{{1, 0, 0}}, []payload.Payload{nil}, []string{"x"}))
	})
}

func TestPersistentStoreReindexesRecords(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	cfg := DefaultConfig().WithPersistDir(dir, false).WithEmbeddingDims(3)

	s, err := NewStore(cfg, nil)
	require.NoError(t, err)
	seed(t, s)

	reopened, err := NewStore(cfg, nil)
	require.NoError(t, err)

	records, err := reopened.ListVectors(ctx, nil, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	rec, found, err := reopened.GetVector(ctx, "m3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []float32{0, 0, 2}, rec.Vector)
	assert.Equal(t, payload.KindFloat, rec.Payload["turn"].Kind())
}

func TestObserverSeesOperations(t *testing.T) {
	obs := &recordingObserver{}
	s := newTestStore(t).WithObserver(obs)
	seed(t, s)
	_, _, _ = s.GetVector(context.Background(), "m1")

	assert.Equal(t, []string{"insert", "get_vector"}, obs.ops)
}

func TestFXModule(t *testing.T) {
	var store vectorstore.Store
	app := fxtest.New(t,
		fx.Supply(DefaultConfig().WithCollection("fx")),
		FXModule,
		fx.Populate(&store),
	)
	app.RequireStart()
	defer app.RequireStop()

	info, err := store.CollectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fx", info.Name)
}

func TestMetadataFromOtherWriters(t *testing.T) {
	p := decodeMetadata(map[string]string{"plain": "hello world", "n": "7"})
	assert.Equal(t, payload.String("hello world"), p["plain"])
	assert.Equal(t, payload.Int(7), p["n"])
}

func TestOpaqueMetadataKeepsKind(t *testing.T) {
	p := payload.Payload{
		"tags":  payload.Opaque(`["a","b"]`),
		"meta":  payload.Opaque(`{"k":1}`),
		"plain": payload.String(`["not","opaque"]`),
	}
	m := encodeMetadata(p)
	assert.Equal(t, `["a","b"]`, m["tags"])
	assert.Equal(t, `"[\"not\",\"opaque\"]"`, m["plain"])

	back := decodeMetadata(m)
	assert.Equal(t, payload.KindOpaque, back["tags"].Kind())
	assert.Equal(t, payload.KindOpaque, back["meta"].Kind())
	assert.Equal(t, payload.KindString, back["plain"].Kind())
	assert.True(t, p.Equal(back), "got %v", back)
}
