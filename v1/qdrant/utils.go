package qdrant

import (
	"context"
	"errors"
	"net/http"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// mapError sorts a client error into the vectorstore taxonomy. Calls that
// never got an answer are TransportErrors; any other gRPC status is a
// ProtocolError carrying the HTTP equivalent of the code and the status
// message as body.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &vectorstore.TransportError{Op: op, Err: err}
	}

	st, ok := status.FromError(err)
	if !ok {
		return &vectorstore.TransportError{Op: op, Err: err}
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &vectorstore.TransportError{Op: op, Err: err}
	}
	return &vectorstore.ProtocolError{Op: op, StatusCode: httpStatus(st.Code()), Body: st.Message()}
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// extractVectorDetails safely extracts the vector size and distance metric
// of the unnamed vector from a CollectionInfo. Missing fields yield (0, "").
func extractVectorDetails(info *qdrant.CollectionInfo) (int, vectorstore.DistanceMetric) {
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, ""
	}
	return int(params.GetSize()), fromQdrantDistance(params.GetDistance())
}
