package qdrant

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// buildFilter converts a FilterSet into a Qdrant filter. Must, Should and
// MustNot map one to one onto the Qdrant clauses. A nil or empty FilterSet
// yields nil.
func buildFilter(fs *vectorstore.FilterSet) (*qdrant.Filter, error) {
	if fs.IsEmpty() {
		return nil, nil
	}
	if err := fs.Validate(); err != nil {
		return nil, err
	}

	filter := &qdrant.Filter{}
	var err error
	if filter.Must, err = convertConditionSet(fs.Must); err != nil {
		return nil, err
	}
	if filter.Should, err = convertConditionSet(fs.Should); err != nil {
		return nil, err
	}
	if filter.MustNot, err = convertConditionSet(fs.MustNot); err != nil {
		return nil, err
	}
	return filter, nil
}

func convertConditionSet(cs *vectorstore.ConditionSet) ([]*qdrant.Condition, error) {
	if cs == nil {
		return nil, nil
	}
	var out []*qdrant.Condition
	for _, c := range cs.Conditions {
		cond, err := convertCondition(c)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func convertCondition(c vectorstore.FilterCondition) (*qdrant.Condition, error) {
	switch cond := c.(type) {
	case *vectorstore.MatchCondition:
		return matchValue(cond.Field, cond.Value), nil
	case *vectorstore.MatchAnyCondition:
		return matchAny(cond.Field, cond.Values)
	case *vectorstore.MatchExceptCondition:
		return matchExcept(cond.Field, cond.Values)
	case *vectorstore.NumericRangeCondition:
		return qdrant.NewRange(cond.Field, &qdrant.Range{
			Gt:  cond.Range.Gt,
			Gte: cond.Range.Gte,
			Lt:  cond.Range.Lt,
			Lte: cond.Range.Lte,
		}), nil
	default:
		return nil, vectorstore.NewArgumentError("qdrant: build filter", fmt.Sprintf("unsupported filter condition %T", c))
	}
}

// matchValue matches one value. Qdrant has no float equality, so floats
// become a closed range on the value.
func matchValue(field string, v payload.Value) *qdrant.Condition {
	switch v.Kind() {
	case payload.KindInt:
		i, _ := v.AsInt()
		return qdrant.NewMatchInt(field, i)
	case payload.KindFloat:
		f, _ := v.AsFloat()
		return qdrant.NewRange(field, &qdrant.Range{Gte: &f, Lte: &f})
	case payload.KindBool:
		b, _ := v.AsBool()
		return qdrant.NewMatchBool(field, b)
	case payload.KindNull:
		return qdrant.NewIsNull(field)
	default:
		return qdrant.NewMatch(field, v.String())
	}
}

func matchAny(field string, values []payload.Value) (*qdrant.Condition, error) {
	if len(values) == 0 {
		return nil, vectorstore.NewArgumentError("qdrant: build filter", fmt.Sprintf("empty value list on %q", field))
	}
	if strs, ok := allStrings(values); ok {
		return qdrant.NewMatchKeywords(field, strs...), nil
	}
	if ints, ok := allInts(values); ok {
		return qdrant.NewMatchInts(field, ints...), nil
	}
	return nested(&qdrant.Filter{Should: each(field, values)}), nil
}

func matchExcept(field string, values []payload.Value) (*qdrant.Condition, error) {
	if len(values) == 0 {
		return nil, vectorstore.NewArgumentError("qdrant: build filter", fmt.Sprintf("empty value list on %q", field))
	}
	if strs, ok := allStrings(values); ok {
		return qdrant.NewMatchExceptKeywords(field, strs...), nil
	}
	if ints, ok := allInts(values); ok {
		return qdrant.NewMatchExceptInts(field, ints...), nil
	}
	return nested(&qdrant.Filter{MustNot: each(field, values)}), nil
}

func each(field string, values []payload.Value) []*qdrant.Condition {
	out := make([]*qdrant.Condition, 0, len(values))
	for _, v := range values {
		out = append(out, matchValue(field, v))
	}
	return out
}

func nested(f *qdrant.Filter) *qdrant.Condition {
	return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Filter{Filter: f}}
}

func allStrings(values []payload.Value) ([]string, bool) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func allInts(values []payload.Value) ([]int64, bool) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if v.Kind() != payload.KindInt {
			return nil, false
		}
		i, _ := v.AsInt()
		out = append(out, i)
	}
	return out, true
}
