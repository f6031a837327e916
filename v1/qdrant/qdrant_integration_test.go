package qdrant

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// QdrantContainer represents a Qdrant container for testing
type QdrantContainer struct {
	testcontainers.Container
	Host string
	Port int
}

// setupQdrantContainer starts Qdrant with its gRPC port bound to a free host port.
func setupQdrantContainer(ctx context.Context) (*QdrantContainer, error) {
	port, err := getFreePort()
	if err != nil {
		return nil, fmt.Errorf("could not get free port: %w", err)
	}

	portBindings := nat.PortMap{
		"6334/tcp": []nat.PortBinding{{HostPort: strconv.Itoa(port)}},
	}

	req := testcontainers.ContainerRequest{
		Image: "qdrant/qdrant:v1.15.5",
		Env: map[string]string{
			"QDRANT__SERVICE__GRPC_PORT": "6334",
		},
		ExposedPorts: []string{"6334/tcp"},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start qdrant container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}

	mappedPort, err := c.MappedPort(ctx, "6334")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	if err := waitForQdrantReady(host, mappedPort.Port(), 30*time.Second); err != nil {
		_ = c.Terminate(ctx)
		return nil, fmt.Errorf("qdrant container not ready: %w", err)
	}

	return &QdrantContainer{
		Container: c,
		Host:      host,
		Port:      mappedPort.Int(),
	}, nil
}

// getFreePort gets a free port from the OS
func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitForQdrantReady attempts to connect to Qdrant until it's ready or times out
func waitForQdrantReady(host, port string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 2*time.Second)
		if err == nil {
			_ = conn.Close()
			time.Sleep(2 * time.Second)
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for Qdrant to be ready after %s", timeout)
}

func randomVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return v
}

func TestQdrantWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = qc.Terminate(ctx) }()

	var store vectorstore.Store
	app := fxtest.New(t,
		fx.Supply(FromEndpoint(qc.Host).WithPort(qc.Port).WithCollection("fx_memories").WithEmbeddingDims(8)),
		FXModule,
		fx.Populate(&store),
	)
	app.RequireStart()
	defer app.RequireStop()

	names, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "fx_memories")
}

func TestQdrantStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	qc, err := setupQdrantContainer(ctx)
	require.NoError(t, err)
	defer func() { _ = qc.Terminate(ctx) }()

	const dims = 4
	cfg := FromEndpoint(qc.Host).
		WithPort(qc.Port).
		WithCollection("agent_memories").
		WithEmbeddingDims(dims).
		WithMetric(vectorstore.L2)

	s, err := NewStore(cfg, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	t.Run("insert and get keeps ids and payload kinds", func(t *testing.T) {
		p := payload.Payload{
			"user_id": payload.String("alice"),
			"turn":    payload.Int(3),
			"weight":  payload.Float(1),
			"pinned":  payload.Bool(true),
		}
		require.NoError(t, s.Insert(ctx, [][]float32{{1, 0, 0, 0}}, []payload.Payload{p}, []string{"mem-1"}))

		rec, found, err := s.GetVector(ctx, "mem-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "mem-1", rec.ID)
		assert.Equal(t, []float32{1, 0, 0, 0}, rec.Vector)
		assert.True(t, p.Equal(rec.Payload), "payload changed: %v", rec.Payload)
	})

	t.Run("search orders by distance and filters", func(t *testing.T) {
		require.NoError(t, s.Insert(ctx,
			[][]float32{{0.9, 0.1, 0, 0}, {0, 1, 0, 0}},
			[]payload.Payload{{"user_id": payload.String("alice")}, {"user_id": payload.String("bob")}},
			[]string{"mem-2", "mem-3"},
		))

		results, err := s.Search(ctx, "", []float32{1, 0, 0, 0}, 3, nil)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "mem-1", results[0].ID)
		assert.InDelta(t, 0.0, results[0].Score, 1e-5)
		assert.Equal(t, "mem-2", results[1].ID)
		assert.Equal(t, "mem-3", results[2].ID)

		results, err = s.Search(ctx, "", []float32{1, 0, 0, 0}, 3, vectorstore.Equals(map[string]any{"user_id": "bob"}))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "mem-3", results[0].ID)
	})

	t.Run("update vector and payload separately", func(t *testing.T) {
		require.NoError(t, s.UpdateVector(ctx, "mem-3", nil, payload.Payload{"user_id": payload.String("carol")}))
		require.NoError(t, s.UpdateVector(ctx, "mem-3", []float32{0, 0, 1, 0}, nil))

		rec, found, err := s.GetVector(ctx, "mem-3")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "carol", rec.Payload["user_id"].String())
		assert.Equal(t, []float32{0, 0, 1, 0}, rec.Vector)
	})

	t.Run("list and count", func(t *testing.T) {
		records, err := s.ListVectors(ctx, vectorstore.Equals(map[string]any{"user_id": "alice"}), 0)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		info, err := s.CollectionInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, vectorstore.Collection{Name: "agent_memories", Dimensions: dims, Metric: vectorstore.L2, Count: 3}, info)
	})

	t.Run("delete is terminal and repeatable", func(t *testing.T) {
		require.NoError(t, s.DeleteVector(ctx, "mem-2"))
		require.NoError(t, s.DeleteVector(ctx, "mem-2"))

		_, found, err := s.GetVector(ctx, "mem-2")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("argument errors", func(t *testing.T) {
		err := s.Insert(ctx, [][]float32{{1, 2}}, []payload.Payload{nil}, []string{"short"})
		assert.True(t, vectorstore.IsInvalidArgument(err))

		_, err = s.Search(ctx, "", randomVector(dims), 0, nil)
		assert.True(t, vectorstore.IsInvalidArgument(err))
	})

	t.Run("collections", func(t *testing.T) {
		require.NoError(t, s.CreateCollection(ctx, "scratch", dims, vectorstore.Cosine))
		require.NoError(t, s.CreateCollection(ctx, "scratch", dims, vectorstore.Cosine))
		require.NoError(t, s.DeleteCollection(ctx, "scratch"))
		require.NoError(t, s.DeleteCollection(ctx, "scratch"))
	})

	t.Run("reset empties the collection", func(t *testing.T) {
		require.NoError(t, s.ResetCollection(ctx))
		records, err := s.ListVectors(ctx, nil, 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestNewStoreFailsFastWhenUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	port, err := getFreePort()
	require.NoError(t, err)

	_, err = NewStore(FromEndpoint("localhost").WithPort(port).WithEmbeddingDims(4), nil)
	require.Error(t, err)
	assert.True(t, vectorstore.IsTransportError(err))
}
