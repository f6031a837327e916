package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

func TestScopeFilters(t *testing.T) {
	assert.True(t, Scope{}.IsEmpty())
	assert.Nil(t, Scope{}.Filters())

	fs := Scope{UserID: "alice", RunID: "r1"}.Filters()
	require.NotNil(t, fs)
	require.Len(t, fs.Must.Conditions, 2)

	assert.True(t, fs.Matches(payload.Payload{
		KeyUserID: payload.String("alice"),
		KeyRunID:  payload.String("r1"),
		KeyData:   payload.String("likes tea"),
	}))
	assert.False(t, fs.Matches(payload.Payload{KeyUserID: payload.String("alice")}))
}
