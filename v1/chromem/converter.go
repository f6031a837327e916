package chromem

import (
	"encoding/json"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// encodeMetadata stores each value as its JSON wire text so kinds survive
// chromem's string-only metadata. Opaque objects and arrays are stored
// unquoted and decode back to Opaque. Nulls are dropped.
func encodeMetadata(p payload.Payload) map[string]string {
	m := make(map[string]string, len(p))
	for k, raw := range payload.Encode(p) {
		if text, ok := p[k].AsOpaque(); ok && isStructured(text) {
			m[k] = text
			continue
		}
		m[k] = string(raw)
	}
	return m
}

// isStructured reports whether text is a JSON object or array. Other opaque
// text is stored as a JSON string.
func isStructured(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || (t[0] != '{' && t[0] != '[') {
		return false
	}
	return json.Valid([]byte(t))
}

// decodeMetadata reverses encodeMetadata. Values that are not JSON, e.g.
// written by other chromem users, come back as strings.
func decodeMetadata(m map[string]string) payload.Payload {
	raw := make(map[string]json.RawMessage, len(m))
	plain := payload.Payload{}
	for k, v := range m {
		if json.Valid([]byte(v)) {
			raw[k] = json.RawMessage(v)
			continue
		}
		plain[k] = payload.String(v)
	}
	p := payload.Decode(raw)
	for k, v := range plain {
		p[k] = v
	}
	return p
}

// The caller's vector is kept in the document content: chromem normalizes
// the embedding it indexes.
func encodeVector(v []float32) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func decodeVector(content string, fallback []float32) []float32 {
	var v []float32
	if err := json.Unmarshal([]byte(content), &v); err != nil || len(v) == 0 {
		return fallback
	}
	return v
}

func newDocument(id string, vector []float32, p payload.Payload) chromem.Document {
	return chromem.Document{
		ID:        id,
		Metadata:  encodeMetadata(p),
		Embedding: append([]float32(nil), vector...),
		Content:   encodeVector(vector),
	}
}

func toRecord(id string, metadata map[string]string, embedding []float32, content string) vectorstore.VectorRecord {
	return vectorstore.VectorRecord{
		ID:      id,
		Vector:  decodeVector(content, embedding),
		Payload: decodeMetadata(metadata),
	}
}
