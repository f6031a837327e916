package vectorstore

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// ── FilterSet Constructors ───────────────────────────────────────────────────

// NewFilterSet creates a FilterSet with the given clauses.
// Use with Must(), Should(), and MustNot() helpers.
//
// Example:
//
//	vectorstore.NewFilterSet(
//	    vectorstore.Must(vectorstore.NewMatch("user_id", "alice")),
//	    vectorstore.Should(vectorstore.NewMatch("tag", "ml"), vectorstore.NewMatch("tag", "ai")),
//	)
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must creates a Must clause (AND logic) with the given conditions.
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Must = &ConditionSet{Conditions: conditions}
	}
}

// Should creates a Should clause (OR logic) with the given conditions.
func Should(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Should = &ConditionSet{Conditions: conditions}
	}
}

// MustNot creates a MustNot clause (NOT logic) with the given conditions.
func MustNot(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.MustNot = &ConditionSet{Conditions: conditions}
	}
}

// Equals builds a Must clause of exact matches, one per map entry. Keys are
// sorted so the resulting condition order is stable. An empty map yields nil.
func Equals(fields map[string]any) *FilterSet {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]FilterCondition, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, NewMatch(k, fields[k]))
	}
	return NewFilterSet(Must(conds...))
}

// ── Condition Constructors ───────────────────────────────────────────────────

// NewMatch creates an equality condition. value is converted with payload.Of.
func NewMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: payload.Of(value)}
}

// NewMatchAny creates an IN condition.
func NewMatchAny(field string, values ...any) *MatchAnyCondition {
	return &MatchAnyCondition{Field: field, Values: toValues(values)}
}

// NewMatchExcept creates a NOT IN condition.
func NewMatchExcept(field string, values ...any) *MatchExceptCondition {
	return &MatchExceptCondition{Field: field, Values: toValues(values)}
}

// NewNumericRange creates a numeric range condition.
func NewNumericRange(field string, r NumericRange) *NumericRangeCondition {
	return &NumericRangeCondition{Field: field, Range: r}
}

// Float64 returns a pointer to f, for building NumericRange bounds.
func Float64(f float64) *float64 { return &f }

func toValues(values []any) []payload.Value {
	out := make([]payload.Value, 0, len(values))
	for _, v := range values {
		out = append(out, payload.Of(v))
	}
	return out
}

// ── Inspection ───────────────────────────────────────────────────────────────

// IsEmpty reports whether fs carries no conditions at all.
func (fs *FilterSet) IsEmpty() bool {
	if fs == nil {
		return true
	}
	return fs.Must.size() == 0 && fs.Should.size() == 0 && fs.MustNot.size() == 0
}

func (cs *ConditionSet) size() int {
	if cs == nil {
		return 0
	}
	return len(cs.Conditions)
}

// Validate checks that every condition names a field and that range
// conditions carry at least one bound.
func (fs *FilterSet) Validate() error {
	if fs == nil {
		return nil
	}
	for _, cs := range []*ConditionSet{fs.Must, fs.Should, fs.MustNot} {
		if cs == nil {
			continue
		}
		for i, c := range cs.Conditions {
			if c == nil {
				return NewArgumentError("validate filters", fmt.Sprintf("condition %d is nil", i))
			}
			if c.FieldName() == "" {
				return NewArgumentError("validate filters", fmt.Sprintf("condition %d has no field", i))
			}
			if r, ok := c.(*NumericRangeCondition); ok && r.Range.IsEmpty() {
				return NewArgumentError("validate filters", fmt.Sprintf("range on %q has no bounds", r.Field))
			}
		}
	}
	return nil
}

// ── Client-side evaluation ───────────────────────────────────────────────────

// Matches evaluates fs against p. A nil or empty FilterSet matches every
// payload. Conditions on a field absent from p evaluate to false.
func (fs *FilterSet) Matches(p payload.Payload) bool {
	if fs.IsEmpty() {
		return true
	}
	if fs.Must != nil {
		for _, c := range fs.Must.Conditions {
			if !conditionMatches(c, p) {
				return false
			}
		}
	}
	if fs.Should.size() > 0 {
		matched := false
		for _, c := range fs.Should.Conditions {
			if conditionMatches(c, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if fs.MustNot != nil {
		for _, c := range fs.MustNot.Conditions {
			if conditionMatches(c, p) {
				return false
			}
		}
	}
	return true
}

func conditionMatches(c FilterCondition, p payload.Payload) bool {
	v, ok := p[c.FieldName()]
	if !ok || v.IsNull() {
		return false
	}
	switch cond := c.(type) {
	case *MatchCondition:
		return valuesEqual(v, cond.Value)
	case *MatchAnyCondition:
		for _, want := range cond.Values {
			if valuesEqual(v, want) {
				return true
			}
		}
		return false
	case *MatchExceptCondition:
		for _, want := range cond.Values {
			if valuesEqual(v, want) {
				return false
			}
		}
		return true
	case *NumericRangeCondition:
		f, ok := v.AsFloat()
		if !ok {
			return false
		}
		r := cond.Range
		return (r.Gt == nil || f > *r.Gt) &&
			(r.Gte == nil || f >= *r.Gte) &&
			(r.Lt == nil || f < *r.Lt) &&
			(r.Lte == nil || f <= *r.Lte)
	default:
		return false
	}
}

// valuesEqual compares numerically across Int and Float, otherwise by kind
// and value.
func valuesEqual(a, b payload.Value) bool {
	if a.Equal(b) {
		return true
	}
	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	return aok && bok && af == bf
}

// ── JSON Serialization ───────────────────────────────────────────────────────

// MarshalJSON implements custom JSON marshaling for ConditionSet.
// This is needed because FilterCondition is an interface.
func (cs *ConditionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(cs.Conditions)
}

// UnmarshalJSON implements custom JSON unmarshaling for ConditionSet.
// It detects the condition type based on JSON keys.
func (cs *ConditionSet) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cs.Conditions = make([]FilterCondition, 0, len(raw))

	for _, r := range raw {
		cond, err := parseCondition(r)
		if err != nil {
			return err
		}
		cs.Conditions = append(cs.Conditions, cond)
	}

	return nil
}

// parseCondition detects and parses a single FilterCondition from JSON:
//   - "equalTo" → MatchCondition
//   - "anyOf" → MatchAnyCondition
//   - "noneOf" → MatchExceptCondition
//   - "greaterThan", "lessThan", etc. → NumericRangeCondition
func parseCondition(data []byte) (FilterCondition, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	switch {
	case hasKey(fields, "equalTo"):
		var c MatchCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil

	case hasKey(fields, "anyOf"):
		var c MatchAnyCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil

	case hasKey(fields, "noneOf"):
		var c MatchExceptCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil

	case hasKey(fields, "greaterThan"), hasKey(fields, "greaterThanOrEqualTo"),
		hasKey(fields, "lessThan"), hasKey(fields, "lessThanOrEqualTo"):
		var c NumericRangeCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil

	default:
		return nil, fmt.Errorf("vectorstore: unknown filter condition type: %s", string(data))
	}
}

func hasKey(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}

// ── Argument validation ──────────────────────────────────────────────────────

// ValidateInsert checks the batch shape shared by every backend's Insert:
// the three slices must be non-empty and of equal length, ids non-empty and
// each vector valid for ValidateVector. op prefixes the returned error.
func ValidateInsert(op string, vectors [][]float32, payloads []payload.Payload, ids []string, dims int) error {
	if len(vectors) == 0 {
		return NewArgumentError(op, "no vectors given")
	}
	if len(vectors) != len(payloads) || len(vectors) != len(ids) {
		return NewArgumentError(op, fmt.Sprintf(
			"length mismatch: %d vectors, %d payloads, %d ids", len(vectors), len(payloads), len(ids)))
	}
	for i := range vectors {
		if ids[i] == "" {
			return NewArgumentError(op, fmt.Sprintf("id at index %d is empty", i))
		}
		if err := ValidateVector(op, vectors[i], dims); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVector checks a single vector against the expected dimensionality.
// dims <= 0 only requires a non-empty vector. NaN and infinite components
// are rejected since they have no JSON encoding.
func ValidateVector(op string, vector []float32, dims int) error {
	if len(vector) == 0 {
		return NewArgumentError(op, "vector is empty")
	}
	if dims > 0 && len(vector) != dims {
		return NewArgumentError(op, fmt.Sprintf("vector has %d dimensions, collection expects %d", len(vector), dims))
	}
	for i, x := range vector {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return NewArgumentError(op, fmt.Sprintf("component %d is %v", i, x))
		}
	}
	return nil
}
