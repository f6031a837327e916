// Package observability defines the hook through which storage and model
// clients report completed operations to metrics and tracing backends.
//
// Clients call Observer.ObserveOperation once per finished operation. The
// observer must be safe for concurrent use and must not block.
package observability

import "time"

// Observer receives a notification for every completed client operation.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the reporting client, e.g. "chroma" or "embedding".
	Component string

	// Operation is the operation name, e.g. "insert" or "search".
	Operation string

	// Resource is the primary target, e.g. a collection name.
	Resource string

	// SubResource narrows the target, e.g. a record id.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is an operation-specific count such as records written or
	// results returned.
	Size int64

	Metadata map[string]interface{}
}

// Status returns "success" or "error" depending on Error.
func (c OperationContext) Status() string {
	if c.Error != nil {
		return "error"
	}
	return "success"
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

func (f ObserverFunc) ObserveOperation(ctx OperationContext) { f(ctx) }
