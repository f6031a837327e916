package qdrant

import (
	"testing"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

func TestBuildFilter_NilFilterSet(t *testing.T) {
	result, err := buildFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestBuildFilter_EmptyFilterSet(t *testing.T) {
	result, err := buildFilter(&vectorstore.FilterSet{Must: &vectorstore.ConditionSet{}})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestBuildFilter_Equals(t *testing.T) {
	result, err := buildFilter(vectorstore.Equals(map[string]any{
		"user_id": "alice",
		"turn":    3,
		"pinned":  true,
	}))
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Must, 3)
	assert.Empty(t, result.Should)
	assert.Empty(t, result.MustNot)

	// Equals sorts keys: pinned, turn, user_id
	assert.True(t, result.Must[0].GetField().GetMatch().GetBoolean())
	assert.Equal(t, int64(3), result.Must[1].GetField().GetMatch().GetInteger())
	assert.Equal(t, "alice", result.Must[2].GetField().GetMatch().GetKeyword())
}

func TestBuildFilter_FloatEqualityBecomesClosedRange(t *testing.T) {
	result, err := buildFilter(vectorstore.NewFilterSet(vectorstore.Must(vectorstore.NewMatch("score", 0.5))))
	require.NoError(t, err)
	require.Len(t, result.Must, 1)

	r := result.Must[0].GetField().GetRange()
	require.NotNil(t, r)
	assert.Equal(t, 0.5, r.GetGte())
	assert.Equal(t, 0.5, r.GetLte())
	assert.Nil(t, r.Gt)
	assert.Nil(t, r.Lt)
}

func TestBuildFilter_ShouldAndMustNot(t *testing.T) {
	result, err := buildFilter(vectorstore.NewFilterSet(
		vectorstore.Should(
			vectorstore.NewMatch("role", "user"),
			vectorstore.NewMatch("role", "assistant"),
		),
		vectorstore.MustNot(vectorstore.NewMatch("archived", true)),
	))
	require.NoError(t, err)
	assert.Len(t, result.Should, 2)
	assert.Len(t, result.MustNot, 1)
}

func TestBuildFilter_MatchAny(t *testing.T) {
	tests := []struct {
		name   string
		cond   vectorstore.FilterCondition
		verify func(t *testing.T, c *qdrant.Condition)
	}{
		{
			name: "keywords",
			cond: vectorstore.NewMatchAny("tier", "free", "pro"),
			verify: func(t *testing.T, c *qdrant.Condition) {
				assert.Equal(t, []string{"free", "pro"}, c.GetField().GetMatch().GetKeywords().GetStrings())
			},
		},
		{
			name: "integers",
			cond: vectorstore.NewMatchAny("turn", 1, 2, 3),
			verify: func(t *testing.T, c *qdrant.Condition) {
				assert.Equal(t, []int64{1, 2, 3}, c.GetField().GetMatch().GetIntegers().GetIntegers())
			},
		},
		{
			name: "mixed kinds fall back to nested should",
			cond: vectorstore.NewMatchAny("score", 1, 2.5),
			verify: func(t *testing.T, c *qdrant.Condition) {
				nested := c.GetFilter()
				require.NotNil(t, nested)
				assert.Len(t, nested.Should, 2)
			},
		},
		{
			name: "except keywords",
			cond: vectorstore.NewMatchExcept("tier", "banned"),
			verify: func(t *testing.T, c *qdrant.Condition) {
				assert.Equal(t, []string{"banned"}, c.GetField().GetMatch().GetExceptKeywords().GetStrings())
			},
		},
		{
			name: "except mixed kinds fall back to nested must not",
			cond: vectorstore.NewMatchExcept("flag", true, "x"),
			verify: func(t *testing.T, c *qdrant.Condition) {
				nested := c.GetFilter()
				require.NotNil(t, nested)
				assert.Len(t, nested.MustNot, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := buildFilter(vectorstore.NewFilterSet(vectorstore.Must(tt.cond)))
			require.NoError(t, err)
			require.Len(t, result.Must, 1)
			tt.verify(t, result.Must[0])
		})
	}
}

func TestBuildFilter_NumericRange(t *testing.T) {
	result, err := buildFilter(vectorstore.NewFilterSet(vectorstore.Must(
		vectorstore.NewNumericRange("age", vectorstore.NumericRange{Gte: vectorstore.Float64(18), Lt: vectorstore.Float64(65)}),
	)))
	require.NoError(t, err)

	r := result.Must[0].GetField().GetRange()
	require.NotNil(t, r)
	assert.Equal(t, 18.0, r.GetGte())
	assert.Equal(t, 65.0, r.GetLt())
}

func TestBuildFilter_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		filters *vectorstore.FilterSet
	}{
		{"empty range", vectorstore.NewFilterSet(vectorstore.Must(vectorstore.NewNumericRange("age", vectorstore.NumericRange{})))},
		{"empty field", vectorstore.NewFilterSet(vectorstore.Must(vectorstore.NewMatch("", "x")))},
		{"empty value list", vectorstore.NewFilterSet(vectorstore.Should(vectorstore.NewMatchAny("tier")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildFilter(tt.filters)
			require.Error(t, err)
			assert.True(t, vectorstore.IsInvalidArgument(err))
		})
	}
}
