package payload

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Payload is the metadata record attached to a stored vector.
type Payload map[string]Value

// FromMap converts a map of native Go values into a Payload using Of.
func FromMap(m map[string]any) Payload {
	if m == nil {
		return nil
	}
	p := make(Payload, len(m))
	for k, v := range m {
		p[k] = Of(v)
	}
	return p
}

// Map converts p into a map of native Go values (see Value.Native).
// Null entries are skipped.
func (p Payload) Map() map[string]any {
	if p == nil {
		return nil
	}
	m := make(map[string]any, len(p))
	for k, v := range p {
		if v.IsNull() {
			continue
		}
		m[k] = v.Native()
	}
	return m
}

// Clone returns a shallow copy of p.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Equal reports whether p and o hold the same keys with equal values.
func (p Payload) Equal(o Payload) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes p as a JSON object using Encode.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(Encode(p))
}

// UnmarshalJSON decodes a JSON object into p using Decode.
func (p *Payload) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// Encode converts p into raw JSON values keyed by field name. Null values
// are omitted. Encode never fails.
func Encode(p Payload) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(p))
	for k, v := range p {
		if v.IsNull() {
			continue
		}
		out[k] = encodeValue(v)
	}
	return out
}

// Decode converts raw JSON values into a Payload. Decode never fails: JSON
// null entries are dropped and structured values become Opaque.
func Decode(raw map[string]json.RawMessage) Payload {
	out := make(Payload, len(raw))
	for k, r := range raw {
		v := decodeRaw(r)
		if v.IsNull() {
			continue
		}
		out[k] = v
	}
	return out
}

// DecodeJSON decodes a JSON object document into a Payload. It fails only
// when data is not a JSON object. A JSON null document yields an empty
// Payload.
func DecodeJSON(data []byte) (Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return Decode(raw), nil
}

// EncodeValue returns the wire form of a single value. Null encodes as the
// JSON literal null.
func EncodeValue(v Value) json.RawMessage {
	return encodeValue(v)
}

func encodeValue(v Value) json.RawMessage {
	switch v.kind {
	case KindString, KindOpaque:
		data, _ := json.Marshal(v.s)
		return data
	case KindInt:
		return json.RawMessage(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			data, _ := json.Marshal(formatFloat(v.f))
			return data
		}
		return json.RawMessage(formatFloat(v.f))
	case KindBool:
		return json.RawMessage(strconv.FormatBool(v.b))
	default:
		return json.RawMessage("null")
	}
}

func decodeRaw(r json.RawMessage) Value {
	t := bytes.TrimSpace(r)
	if len(t) == 0 {
		return Null()
	}
	switch t[0] {
	case '"':
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return Opaque(string(t))
		}
		return String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(t, &b); err != nil {
			return Opaque(string(t))
		}
		return Bool(b)
	case 'n':
		return Null()
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, t); err != nil {
			return Opaque(string(t))
		}
		return Opaque(buf.String())
	default:
		return decodeNumber(string(t))
	}
}

func decodeNumber(s string) Value {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Opaque(s)
	}
	return Float(f)
}
