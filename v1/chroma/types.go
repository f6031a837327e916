package chroma

import "encoding/json"

// Request and response bodies of the Chroma REST API.

type metadata = map[string]json.RawMessage

type createCollectionRequest struct {
	Name     string   `json:"name"`
	Metadata metadata `json:"metadata,omitempty"`
}

type collectionResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Metadata  metadata `json:"metadata"`
	Dimension *int     `json:"dimension"`
}

type addRequest struct {
	IDs        []string    `json:"ids"`
	Embeddings [][]float32 `json:"embeddings"`
	Metadatas  []metadata  `json:"metadatas,omitempty"`
}

type upsertRequest struct {
	IDs        []string    `json:"ids"`
	Embeddings [][]float32 `json:"embeddings,omitempty"`
	Metadatas  []metadata  `json:"metadatas,omitempty"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32    `json:"query_embeddings"`
	NResults        int            `json:"n_results"`
	Include         []string       `json:"include"`
	Where           map[string]any `json:"where,omitempty"`
}

// queryResponse holds one result list per query embedding.
type queryResponse struct {
	IDs        [][]string    `json:"ids"`
	Distances  [][]float64   `json:"distances"`
	Metadatas  [][]metadata  `json:"metadatas"`
	Embeddings [][][]float32 `json:"embeddings"`
}

type getRequest struct {
	IDs     []string       `json:"ids,omitempty"`
	Where   map[string]any `json:"where,omitempty"`
	Limit   int            `json:"limit,omitempty"`
	Include []string       `json:"include"`
}

type getResponse struct {
	IDs        []string    `json:"ids"`
	Metadatas  []metadata  `json:"metadatas"`
	Embeddings [][]float32 `json:"embeddings"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

var (
	queryInclude = []string{"metadatas", "distances", "embeddings"}
	getInclude   = []string{"metadatas", "embeddings"}
)

// spaceKey is the collection metadata key selecting the HNSW distance function.
const spaceKey = "hnsw:space"
