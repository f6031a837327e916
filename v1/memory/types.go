package memory

import (
	"time"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// Payload keys memories are stored under.
const (
	KeyData      = "data"
	KeyHash      = "hash"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
	KeyUserID    = "user_id"
	KeyAgentID   = "agent_id"
	KeyRunID     = "run_id"
)

// Scope selects whose memories an operation works on. At least one field
// is set for writes.
type Scope struct {
	UserID  string
	AgentID string
	RunID   string
}

// IsEmpty reports whether no identifier is set.
func (s Scope) IsEmpty() bool {
	return s.UserID == "" && s.AgentID == "" && s.RunID == ""
}

// Filters returns the equality filter matching the set identifiers, or nil
// for an empty scope.
func (s Scope) Filters() *vectorstore.FilterSet {
	fields := map[string]any{}
	if s.UserID != "" {
		fields[KeyUserID] = s.UserID
	}
	if s.AgentID != "" {
		fields[KeyAgentID] = s.AgentID
	}
	if s.RunID != "" {
		fields[KeyRunID] = s.RunID
	}
	if len(fields) == 0 {
		return nil
	}
	return vectorstore.Equals(fields)
}

// MemoryType distinguishes the default short and long term memories from
// procedural ones.
type MemoryType string

const (
	MemoryTypeDefault    MemoryType = ""
	MemoryTypeProcedural MemoryType = "procedural_memory"
)

type AddOptions struct {
	Metadata payload.Payload
	Infer    bool
	Type     MemoryType
	// Prompt overrides the fact extraction prompt.
	Prompt string
}

// Event names the change Add applied to a memory.
type Event string

const (
	EventAdd    Event = "ADD"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
	EventNone   Event = "NONE"
)

// Item is one memory as returned to callers.
type Item struct {
	ID        string
	Memory    string
	Hash      string
	Score     float64
	CreatedAt time.Time
	UpdatedAt time.Time
	Scope     Scope
	Metadata  payload.Payload
}

type AddResult struct {
	Results   []ItemEvent
	Relations []Relation
}

type ItemEvent struct {
	ID             string
	Memory         string
	Event          Event
	PreviousMemory string
}

type HistoryEntry struct {
	ID        string
	MemoryID  string
	OldMemory string
	NewMemory string
	Event     Event
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
}

// Relation is a directed edge between two entities.
type Relation struct {
	Source       string
	Relationship string
	Destination  string
}

type GraphResult struct {
	Added   []Relation
	Deleted []Relation
}
