package memory

import (
	"context"

	"github.com/Aleph-Alpha/agentmem/v1/llm"
)

// Memory is the orchestrator agents talk to: it extracts facts from
// conversations, stores them as embedded records and answers queries.
type Memory interface {
	// Add extracts memories from messages and stores them under scope.
	// With Infer unset the messages are stored verbatim.
	Add(ctx context.Context, messages []llm.Message, scope Scope, opts AddOptions) (AddResult, error)

	// Search returns the memories of scope closest to query.
	Search(ctx context.Context, query string, scope Scope, limit int) ([]Item, error)

	// Get returns one memory; the boolean is false when it does not exist.
	Get(ctx context.Context, id string) (Item, bool, error)

	// GetAll lists the memories of scope.
	GetAll(ctx context.Context, scope Scope, limit int) ([]Item, error)

	// Update replaces the text of a memory and re-embeds it.
	Update(ctx context.Context, id, data string) error

	Delete(ctx context.Context, id string) error

	// DeleteAll removes every memory of scope. An empty scope is rejected.
	DeleteAll(ctx context.Context, scope Scope) error

	// History lists the recorded changes of a memory, oldest first.
	History(ctx context.Context, id string) ([]HistoryEntry, error)

	// Reset drops all memories and history.
	Reset(ctx context.Context) error
}

// GraphStore keeps entity relations extracted alongside memories.
type GraphStore interface {
	Add(ctx context.Context, data string, scope Scope) (GraphResult, error)
	Search(ctx context.Context, query string, scope Scope, limit int) ([]Relation, error)
	DeleteAll(ctx context.Context, scope Scope) error
	GetAll(ctx context.Context, scope Scope, limit int) ([]Relation, error)
}
