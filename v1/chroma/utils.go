package chroma

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// expectStatus returns a ProtocolError unless resp carries one of accepted.
func expectStatus(op string, resp *Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}
	return protocolError(op, resp)
}

func protocolError(op string, resp *Response) error {
	return &vectorstore.ProtocolError{Op: op, StatusCode: resp.StatusCode, Body: string(resp.Body)}
}

// decode unmarshals the response body into v, reporting failures as a
// CodecError carrying the raw body.
func decode(op string, resp *Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &vectorstore.CodecError{Op: op, Body: string(resp.Body), Err: err}
	}
	return nil
}

func errColumnMismatch(column string, got, want int) error {
	return fmt.Errorf("%s has %d entries, ids has %d", column, got, want)
}

// at returns s[i], or the zero value when s is too short.
func at[T any](s []T, i int) T {
	var zero T
	if i < 0 || i >= len(s) {
		return zero
	}
	return s[i]
}

func trimSpace(b []byte) []byte {
	return bytes.TrimSpace(b)
}
