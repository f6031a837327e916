package vectorstore

import (
	"errors"
	"fmt"
)

// Common vector store errors
var (
	// ErrTransport is matched by errors raised when no HTTP/gRPC exchange
	// completed (connect failure, timeout, cancelled context).
	ErrTransport = errors.New("vectorstore: transport failure")

	// ErrProtocol is matched by errors raised when the service answered with
	// a status outside the operation's accepted set.
	ErrProtocol = errors.New("vectorstore: unexpected response status")

	// ErrCodec is matched by errors raised when a response body could not be
	// parsed.
	ErrCodec = errors.New("vectorstore: malformed response")

	// ErrInvalidArgument is matched by errors raised for malformed input
	// before any remote call was made.
	ErrInvalidArgument = errors.New("vectorstore: invalid argument")

	// ErrNotReady is returned by record operations while the active
	// collection is known to be absent, for example after it was dropped
	// with DeleteCollection. No request is sent.
	ErrNotReady = errors.New("vectorstore: collection not ready")
)

// TransportError reports that an operation never received a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolError reports a response whose status code the operation does not
// accept. Body is the raw response text.
type ProtocolError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// CodecError reports a response body that could not be decoded.
type CodecError struct {
	Op   string
	Body string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

func (e *CodecError) Is(target error) bool { return target == ErrCodec }

// ArgumentError reports caller input rejected before any remote call.
type ArgumentError struct {
	Op     string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument: %s", e.Op, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// NewArgumentError returns an *ArgumentError for op.
func NewArgumentError(op, reason string) error {
	return &ArgumentError{Op: op, Reason: reason}
}

// IsTransportError checks if the error is a transport failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsProtocolError checks if the error is an unexpected-status failure.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsCodecError checks if the error is a response decoding failure.
func IsCodecError(err error) bool {
	return errors.Is(err, ErrCodec)
}

// IsInvalidArgument checks if the error is an argument validation failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotReady checks if the error reports an absent active collection.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

// StatusCode extracts the HTTP status from a ProtocolError anywhere in the
// chain. It returns 0 when err carries none.
func StatusCode(err error) int {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}
