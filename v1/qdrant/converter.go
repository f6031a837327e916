package qdrant

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// RecordIDKey is the reserved payload key holding the caller's record id.
// Qdrant only accepts UUIDs and unsigned integers as point ids.
const RecordIDKey = "_record_id"

// recordNamespace seeds the UUIDv5 point ids derived from record ids.
var recordNamespace = uuid.MustParse("6f1c1a8e-3c4b-5d1e-9a57-2b8c0d4e7f10")

// ── Point ids ────────────────────────────────────────────────────────────────

// pointID maps a record id onto a Qdrant point id. UUIDs are used as they
// are; any other id becomes a deterministic UUIDv5.
func pointID(id string) *qdrant.PointId {
	if u, err := uuid.Parse(id); err == nil {
		return qdrant.NewID(u.String())
	}
	return qdrant.NewID(uuid.NewSHA1(recordNamespace, []byte(id)).String())
}

// extractPointID extracts a string ID from Qdrant's PointId type.
func extractPointID(id *qdrant.PointId) (string, error) {
	if id == nil {
		return "", fmt.Errorf("nil point ID")
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Num:
		return strconv.FormatUint(v.Num, 10), nil
	case *qdrant.PointId_Uuid:
		return v.Uuid, nil
	default:
		return "", fmt.Errorf("unexpected PointId type: %T", v)
	}
}

// ── Payloads ─────────────────────────────────────────────────────────────────

// toQdrantPayload converts p into Qdrant values and stamps the record id.
// Null values are dropped; opaque values are stored as their JSON text.
func toQdrantPayload(id string, p payload.Payload) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(p)+1)
	for k, v := range p {
		if qv := toQdrantValue(v); qv != nil {
			out[k] = qv
		}
	}
	out[RecordIDKey] = qdrant.NewValueString(id)
	return out
}

func toQdrantValue(v payload.Value) *qdrant.Value {
	switch v.Kind() {
	case payload.KindString, payload.KindOpaque:
		return qdrant.NewValueString(v.String())
	case payload.KindInt:
		i, _ := v.AsInt()
		return qdrant.NewValueInt(i)
	case payload.KindFloat:
		f, _ := v.AsFloat()
		return qdrant.NewValueDouble(f)
	case payload.KindBool:
		b, _ := v.AsBool()
		return qdrant.NewValueBool(b)
	default:
		return nil
	}
}

// fromQdrantPayload converts a Qdrant payload back into a Payload and
// returns the stored record id, if any.
func fromQdrantPayload(fields map[string]*qdrant.Value) (payload.Payload, string) {
	p := make(payload.Payload, len(fields))
	var recordID string
	for k, v := range fields {
		if k == RecordIDKey {
			recordID = v.GetStringValue()
			continue
		}
		p[k] = fromQdrantValue(v)
	}
	return p, recordID
}

func fromQdrantValue(v *qdrant.Value) payload.Value {
	if v == nil {
		return payload.Null()
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return payload.String(val.StringValue)
	case *qdrant.Value_IntegerValue:
		return payload.Int(val.IntegerValue)
	case *qdrant.Value_DoubleValue:
		return payload.Float(val.DoubleValue)
	case *qdrant.Value_BoolValue:
		return payload.Bool(val.BoolValue)
	case *qdrant.Value_StructValue, *qdrant.Value_ListValue:
		raw, err := json.Marshal(nativeValue(v))
		if err != nil {
			return payload.Null()
		}
		return payload.Opaque(string(raw))
	default:
		return payload.Null()
	}
}

// nativeValue recursively converts a Qdrant Value to a Go native type.
func nativeValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		out := make(map[string]any, len(val.StructValue.Fields))
		for k, f := range val.StructValue.Fields {
			out[k] = nativeValue(f)
		}
		return out
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = nativeValue(item)
		}
		return items
	default:
		return nil
	}
}

// ── Vectors and scores ───────────────────────────────────────────────────────

// denseVector extracts the unnamed dense vector of a point.
func denseVector(out *qdrant.VectorsOutput) []float32 {
	v := out.GetVector()
	if v == nil {
		return nil
	}
	if d := v.GetDense(); d != nil && len(d.GetData()) > 0 {
		return d.GetData()
	}
	return v.GetData()
}

// toDistance turns a Qdrant score into an ascending distance. Qdrant ranks
// cosine and dot by descending similarity and euclid by ascending distance.
func toDistance(metric vectorstore.DistanceMetric, score float32) float64 {
	s := float64(score)
	switch metric {
	case vectorstore.Cosine:
		return 1 - s
	case vectorstore.InnerProduct:
		return -s
	default:
		return s
	}
}

func toQdrantDistance(metric vectorstore.DistanceMetric) qdrant.Distance {
	switch metric {
	case vectorstore.L2:
		return qdrant.Distance_Euclid
	case vectorstore.InnerProduct:
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Cosine
	}
}

func fromQdrantDistance(d qdrant.Distance) vectorstore.DistanceMetric {
	switch d {
	case qdrant.Distance_Euclid:
		return vectorstore.L2
	case qdrant.Distance_Dot:
		return vectorstore.InnerProduct
	default:
		return vectorstore.Cosine
	}
}

// ── Records ──────────────────────────────────────────────────────────────────

func toRecord(id *qdrant.PointId, fields map[string]*qdrant.Value, vectors *qdrant.VectorsOutput) (vectorstore.VectorRecord, error) {
	p, recordID := fromQdrantPayload(fields)
	if recordID == "" {
		pid, err := extractPointID(id)
		if err != nil {
			return vectorstore.VectorRecord{}, err
		}
		recordID = pid
	}
	return vectorstore.VectorRecord{
		ID:      recordID,
		Vector:  denseVector(vectors),
		Payload: p,
	}, nil
}

func toRecords(points []*qdrant.RetrievedPoint) ([]vectorstore.VectorRecord, error) {
	records := make([]vectorstore.VectorRecord, 0, len(points))
	for _, pt := range points {
		rec, err := toRecord(pt.GetId(), pt.GetPayload(), pt.GetVectors())
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseSearchResults converts scored points into results with distances.
func parseSearchResults(metric vectorstore.DistanceMetric, points []*qdrant.ScoredPoint) ([]vectorstore.SearchResult, error) {
	results := make([]vectorstore.SearchResult, 0, len(points))
	for _, pt := range points {
		rec, err := toRecord(pt.GetId(), pt.GetPayload(), pt.GetVectors())
		if err != nil {
			return nil, err
		}
		results = append(results, vectorstore.SearchResult{
			VectorRecord: rec,
			Score:        toDistance(metric, pt.GetScore()),
		})
	}
	return results, nil
}
