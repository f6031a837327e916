package vectorstore

import (
	"encoding/json"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// FilterCondition is the interface all filter conditions implement.
// Each backend converts these to its native filter format.
type FilterCondition interface {
	// IsFilterCondition is a marker method
	IsFilterCondition()
	// FieldName returns the payload key the condition inspects.
	FieldName() string
}

// FilterSet supports Must (AND), Should (OR), and MustNot (NOT) clauses.
// A nil FilterSet matches everything.
//
// Example:
//
//	filters := &FilterSet{
//	    Must: &ConditionSet{
//	        Conditions: []FilterCondition{
//	            NewMatch("user_id", "alice"),
//	        },
//	    },
//	}
type FilterSet struct {
	// Must: All conditions must match (AND)
	Must *ConditionSet `json:"must,omitempty"`
	// Should: At least one condition must match (OR)
	Should *ConditionSet `json:"should,omitempty"`
	// MustNot: None of the conditions should match (NOT)
	MustNot *ConditionSet `json:"mustNot,omitempty"`
}

// ConditionSet holds a group of conditions for a single clause.
type ConditionSet struct {
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// ── Match Conditions ─────────────────────────────────────────────────────────

// MatchCondition represents an exact match filter (field = value).
type MatchCondition struct {
	Field string        `json:"field"`
	Value payload.Value `json:"equalTo"`
}

func (c *MatchCondition) IsFilterCondition() {}
func (c *MatchCondition) FieldName() string  { return c.Field }

// MatchAnyCondition matches if the field equals any of the values (IN).
type MatchAnyCondition struct {
	Field  string          `json:"field"`
	Values []payload.Value `json:"anyOf"`
}

func (c *MatchAnyCondition) IsFilterCondition() {}
func (c *MatchAnyCondition) FieldName() string  { return c.Field }

// MatchExceptCondition matches if the field equals none of the values (NOT IN).
type MatchExceptCondition struct {
	Field  string          `json:"field"`
	Values []payload.Value `json:"noneOf"`
}

func (c *MatchExceptCondition) IsFilterCondition() {}
func (c *MatchExceptCondition) FieldName() string  { return c.Field }

// ── Range Conditions ─────────────────────────────────────────────────────────

// NumericRange defines bounds for numeric filtering. Nil bounds are open.
type NumericRange struct {
	Gt  *float64 `json:"greaterThan,omitempty"`          // GreaterThan (exclusive)
	Gte *float64 `json:"greaterThanOrEqualTo,omitempty"` // GreaterThanOrEqualTo (inclusive)
	Lt  *float64 `json:"lessThan,omitempty"`             // LessThan (exclusive)
	Lte *float64 `json:"lessThanOrEqualTo,omitempty"`    // LessThanOrEqualTo (inclusive)
}

// IsEmpty reports whether no bound is set.
func (r NumericRange) IsEmpty() bool {
	return r.Gt == nil && r.Gte == nil && r.Lt == nil && r.Lte == nil
}

// NumericRangeCondition filters a numeric field by range.
type NumericRangeCondition struct {
	Field string       `json:"field"`
	Range NumericRange `json:"-"`
}

func (c *NumericRangeCondition) IsFilterCondition() {}
func (c *NumericRangeCondition) FieldName() string  { return c.Field }

type numericRangeJSON struct {
	Field                string   `json:"field"`
	GreaterThan          *float64 `json:"greaterThan,omitempty"`
	GreaterThanOrEqualTo *float64 `json:"greaterThanOrEqualTo,omitempty"`
	LessThan             *float64 `json:"lessThan,omitempty"`
	LessThanOrEqualTo    *float64 `json:"lessThanOrEqualTo,omitempty"`
}

// MarshalJSON flattens the range bounds next to the field name.
func (c *NumericRangeCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(numericRangeJSON{
		Field:                c.Field,
		GreaterThan:          c.Range.Gt,
		GreaterThanOrEqualTo: c.Range.Gte,
		LessThan:             c.Range.Lt,
		LessThanOrEqualTo:    c.Range.Lte,
	})
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
func (c *NumericRangeCondition) UnmarshalJSON(data []byte) error {
	var alias numericRangeJSON
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	c.Field = alias.Field
	c.Range = NumericRange{
		Gt:  alias.GreaterThan,
		Gte: alias.GreaterThanOrEqualTo,
		Lt:  alias.LessThan,
		Lte: alias.LessThanOrEqualTo,
	}
	return nil
}
