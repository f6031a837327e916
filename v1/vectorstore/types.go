package vectorstore

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// DefaultListLimit is the page size used by ListVectors when the caller
// passes a non-positive limit.
const DefaultListLimit = 100

// DistanceMetric selects how similarity between vectors is measured.
type DistanceMetric string

const (
	L2           DistanceMetric = "l2"
	Cosine       DistanceMetric = "cosine"
	InnerProduct DistanceMetric = "ip"
)

// ParseDistanceMetric converts a metric name into a DistanceMetric. Besides
// the wire names it accepts "euclid", "euclidean" and "dot".
func ParseDistanceMetric(s string) (DistanceMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2", "euclid", "euclidean":
		return L2, nil
	case "cosine", "":
		return Cosine, nil
	case "ip", "dot", "inner_product":
		return InnerProduct, nil
	default:
		return "", NewArgumentError("parse metric", fmt.Sprintf("unknown distance metric %q", s))
	}
}

// String returns the wire name of the metric.
func (m DistanceMetric) String() string { return string(m) }

// VectorRecord is one stored item: an identifier, its embedding and its
// metadata. Vector may be empty when the backend did not return it.
type VectorRecord struct {
	ID      string          `json:"id"`
	Vector  []float32       `json:"vector,omitempty"`
	Payload payload.Payload `json:"payload,omitempty"`
}

// SearchResult is a record returned by a similarity query. Score is the raw
// backend distance; smaller is closer.
type SearchResult struct {
	VectorRecord
	Score float64 `json:"score"`
}

// Collection describes a named vector collection. Dimensions is 0 when
// unknown.
type Collection struct {
	Name       string         `json:"name"`
	Dimensions int            `json:"dimensions"`
	Metric     DistanceMetric `json:"metric"`
	Count      int            `json:"count,omitempty"`
}
