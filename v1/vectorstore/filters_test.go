package vectorstore

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

func TestFilterSetMatches(t *testing.T) {
	alice := payload.Payload{
		"user_id":  payload.String("alice"),
		"category": payload.String("food"),
		"turn":     payload.Int(4),
		"score":    payload.Float(0.7),
	}

	tests := []struct {
		name    string
		filters *FilterSet
		want    bool
	}{
		{"nil matches everything", nil, true},
		{"empty matches everything", NewFilterSet(), true},
		{"must match", NewFilterSet(Must(NewMatch("user_id", "alice"))), true},
		{"must mismatch", NewFilterSet(Must(NewMatch("user_id", "bob"))), false},
		{"missing field", NewFilterSet(Must(NewMatch("agent_id", "x"))), false},
		{"int equals float", NewFilterSet(Must(NewMatch("turn", 4.0))), true},
		{
			"should any",
			NewFilterSet(Should(NewMatch("category", "travel"), NewMatch("category", "food"))),
			true,
		},
		{
			"should none",
			NewFilterSet(Should(NewMatch("category", "travel"), NewMatch("category", "work"))),
			false,
		},
		{"must not excludes", NewFilterSet(MustNot(NewMatchAny("category", "food", "work"))), false},
		{"match except", NewFilterSet(Must(NewMatchExcept("category", "work"))), true},
		{
			"range inside",
			NewFilterSet(Must(NewNumericRange("score", NumericRange{Gte: Float64(0.5), Lt: Float64(1)}))),
			true,
		},
		{
			"range outside",
			NewFilterSet(Must(NewNumericRange("turn", NumericRange{Gt: Float64(4)}))),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Matches(alice))
		})
	}
}

func TestEqualsBuildsSortedMust(t *testing.T) {
	fs := Equals(map[string]any{"user_id": "alice", "agent_id": "planner"})
	require.NotNil(t, fs)
	require.NotNil(t, fs.Must)
	require.Len(t, fs.Must.Conditions, 2)
	assert.Equal(t, "agent_id", fs.Must.Conditions[0].FieldName())
	assert.Equal(t, "user_id", fs.Must.Conditions[1].FieldName())

	assert.Nil(t, Equals(nil))
}

func TestValidateRejectsEmptyRange(t *testing.T) {
	fs := NewFilterSet(Must(NewNumericRange("score", NumericRange{})))
	err := fs.Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	assert.NoError(t, Equals(map[string]any{"a": 1}).Validate())
}

func TestFilterSetJSONRoundTrip(t *testing.T) {
	fs := NewFilterSet(
		Must(NewMatch("user_id", "alice"), NewNumericRange("turn", NumericRange{Gt: Float64(2)})),
		Should(NewMatchAny("category", "food", "travel")),
		MustNot(NewMatchExcept("lang", "en")),
	)

	data, err := json.Marshal(fs)
	require.NoError(t, err)

	var back FilterSet
	require.NoError(t, json.Unmarshal(data, &back))

	require.Len(t, back.Must.Conditions, 2)
	m, ok := back.Must.Conditions[0].(*MatchCondition)
	require.True(t, ok)
	assert.True(t, m.Value.Equal(payload.String("alice")))

	r, ok := back.Must.Conditions[1].(*NumericRangeCondition)
	require.True(t, ok)
	assert.Equal(t, 2.0, *r.Range.Gt)

	_, ok = back.Should.Conditions[0].(*MatchAnyCondition)
	assert.True(t, ok)
	_, ok = back.MustNot.Conditions[0].(*MatchExceptCondition)
	assert.True(t, ok)
}

func TestValidateInsert(t *testing.T) {
	vec := []float32{0.1, 0.2}
	p := payload.Payload{}

	err := ValidateInsert("chroma: insert", nil, nil, nil, 0)
	assert.True(t, IsInvalidArgument(err))
	assert.ErrorContains(t, err, "chroma: insert: invalid argument")

	err = ValidateInsert("chroma: insert", [][]float32{vec, vec}, []payload.Payload{p}, []string{"a", "b"}, 0)
	assert.True(t, IsInvalidArgument(err))

	err = ValidateInsert("qdrant: insert", [][]float32{vec}, []payload.Payload{p}, []string{"a"}, 3)
	assert.True(t, IsInvalidArgument(err))
	assert.ErrorContains(t, err, "qdrant: insert")

	assert.NoError(t, ValidateInsert("chroma: insert", [][]float32{vec}, []payload.Payload{p}, []string{"a"}, 2))
}

func TestValidateVectorRejectsNonFinite(t *testing.T) {
	for _, x := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		err := ValidateVector("chroma: search", []float32{0.1, float32(x)}, 2)
		assert.True(t, IsInvalidArgument(err), "%v", x)
		assert.ErrorContains(t, err, "component 1")
	}
	assert.NoError(t, ValidateVector("chroma: search", []float32{0.1, -0.2}, 2))
}

func TestErrorTaxonomy(t *testing.T) {
	var err error = &ProtocolError{Op: "chroma: add", StatusCode: 500, Body: "boom"}
	assert.True(t, IsProtocolError(err))
	assert.False(t, IsTransportError(err))
	assert.Equal(t, 500, StatusCode(err))
	assert.Contains(t, err.Error(), "boom")

	err = &TransportError{Op: "chroma: query", Err: assert.AnError}
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, assert.AnError)

	err = &CodecError{Op: "chroma: get", Err: assert.AnError}
	assert.True(t, IsCodecError(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestParseDistanceMetric(t *testing.T) {
	m, err := ParseDistanceMetric("euclid")
	require.NoError(t, err)
	assert.Equal(t, L2, m)

	m, err = ParseDistanceMetric("dot")
	require.NoError(t, err)
	assert.Equal(t, InnerProduct, m)

	_, err = ParseDistanceMetric("manhattan")
	assert.True(t, IsInvalidArgument(err))
}
