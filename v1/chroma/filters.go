package chroma

import (
	"encoding/json"
	"fmt"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// Chroma "where" operators.
const (
	opEq  = "$eq"
	opNe  = "$ne"
	opGt  = "$gt"
	opGte = "$gte"
	opLt  = "$lt"
	opLte = "$lte"
	opIn  = "$in"
	opNin = "$nin"
	opAnd = "$and"
	opOr  = "$or"
)

// buildWhere translates a FilterSet into a Chroma where clause.
//
// Must conditions are joined with $and, Should conditions with $or and
// MustNot conditions are negated operator by operator. The three groups
// are joined with $and. Groups of one are unwrapped, since Chroma rejects
// $and/$or with fewer than two operands. A nil or empty FilterSet yields nil.
func buildWhere(fs *vectorstore.FilterSet) (map[string]any, error) {
	if fs.IsEmpty() {
		return nil, nil
	}
	if err := fs.Validate(); err != nil {
		return nil, err
	}

	var groups []map[string]any

	if fs.Must != nil {
		var clauses []map[string]any
		for _, c := range fs.Must.Conditions {
			clause, err := conditionClause(c, false)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		if g := combine(opAnd, clauses); g != nil {
			groups = append(groups, g)
		}
	}

	if fs.Should != nil {
		var clauses []map[string]any
		for _, c := range fs.Should.Conditions {
			clause, err := conditionClause(c, false)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		if g := combine(opOr, clauses); g != nil {
			groups = append(groups, g)
		}
	}

	if fs.MustNot != nil {
		// NOT (a OR b) == NOT a AND NOT b
		var clauses []map[string]any
		for _, c := range fs.MustNot.Conditions {
			clause, err := conditionClause(c, true)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		if g := combine(opAnd, clauses); g != nil {
			groups = append(groups, g)
		}
	}

	return combine(opAnd, groups), nil
}

// combine joins clauses under op, unwrapping a single clause.
func combine(op string, clauses []map[string]any) map[string]any {
	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	default:
		return map[string]any{op: clauses}
	}
}

// conditionClause renders one condition, negated when negate is set.
func conditionClause(c vectorstore.FilterCondition, negate bool) (map[string]any, error) {
	switch cond := c.(type) {
	case *vectorstore.MatchCondition:
		v, err := whereValue(cond.Field, cond.Value)
		if err != nil {
			return nil, err
		}
		op := opEq
		if negate {
			op = opNe
		}
		return fieldClause(cond.Field, op, v), nil

	case *vectorstore.MatchAnyCondition:
		vs, err := whereValues(cond.Field, cond.Values)
		if err != nil {
			return nil, err
		}
		op := opIn
		if negate {
			op = opNin
		}
		return fieldClause(cond.Field, op, vs), nil

	case *vectorstore.MatchExceptCondition:
		vs, err := whereValues(cond.Field, cond.Values)
		if err != nil {
			return nil, err
		}
		op := opNin
		if negate {
			op = opIn
		}
		return fieldClause(cond.Field, op, vs), nil

	case *vectorstore.NumericRangeCondition:
		return rangeClause(cond.Field, cond.Range, negate), nil

	default:
		return nil, vectorstore.NewArgumentError("chroma: build where", fmt.Sprintf("unsupported filter condition %T", c))
	}
}

// rangeClause renders the bounds of r. Several bounds are joined with $and,
// or with $or after negation (NOT (a AND b) == NOT a OR NOT b).
func rangeClause(field string, r vectorstore.NumericRange, negate bool) map[string]any {
	type bound struct {
		op, negated string
		value       *float64
	}
	bounds := []bound{
		{opGt, opLte, r.Gt},
		{opGte, opLt, r.Gte},
		{opLt, opGte, r.Lt},
		{opLte, opGt, r.Lte},
	}

	var clauses []map[string]any
	for _, b := range bounds {
		if b.value == nil {
			continue
		}
		op := b.op
		if negate {
			op = b.negated
		}
		clauses = append(clauses, fieldClause(field, op, payload.EncodeValue(payload.Float(*b.value))))
	}

	if negate {
		return combine(opOr, clauses)
	}
	return combine(opAnd, clauses)
}

func fieldClause(field, op string, value any) map[string]any {
	return map[string]any{field: map[string]any{op: value}}
}

func whereValue(field string, v payload.Value) (json.RawMessage, error) {
	if v.IsNull() {
		return nil, vectorstore.NewArgumentError("chroma: build where", fmt.Sprintf("null comparison on %q", field))
	}
	return payload.EncodeValue(v), nil
}

func whereValues(field string, vs []payload.Value) ([]json.RawMessage, error) {
	if len(vs) == 0 {
		return nil, vectorstore.NewArgumentError("chroma: build where", fmt.Sprintf("empty value list on %q", field))
	}
	out := make([]json.RawMessage, 0, len(vs))
	for _, v := range vs {
		raw, err := whereValue(field, v)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}
