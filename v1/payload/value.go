package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which alternative a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindOpaque
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single metadata value. Exactly one alternative is active,
// selected by Kind. The zero Value is Null.
type Value struct {
	kind Kind
	s    string // String and Opaque
	i    int64
	f    float64
	b    bool
}

// String returns a Value holding s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns a Value holding i.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a Value holding f.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a Value holding b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null returns the null Value.
func Null() Value { return Value{} }

// Opaque returns a Value holding serialized JSON text that is passed through
// without interpretation.
func Opaque(text string) Value { return Value{kind: KindOpaque, s: text} }

// Of converts a native Go value into a Value.
//
// Every integer width maps to Int, except uint values above math.MaxInt64
// which map to Float. float32 and float64 map to Float, string to String,
// bool to Bool and nil to Null. A Value is returned unchanged. json.RawMessage
// becomes Opaque with its text. Anything else is JSON-encoded into an Opaque
// value, falling back to its fmt representation if encoding fails.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		return decodeNumber(string(x))
	case json.RawMessage:
		return decodeRaw(x)
	case []byte:
		return Opaque(string(x))
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return Opaque(fmt.Sprint(x))
		}
		return Opaque(string(data))
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// Kind reports which alternative v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string alternative.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsInt returns the integer alternative.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the value as float64. Int values are widened.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsBool returns the boolean alternative.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsOpaque returns the serialized text of an Opaque value.
func (v Value) AsOpaque() (string, bool) {
	return v.s, v.kind == KindOpaque
}

// Native returns v as a plain Go value: string, int64, float64, bool, nil,
// or for Opaque values the serialized text.
func (v Value) Native() any {
	switch v.kind {
	case KindString, KindOpaque:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same alternative and value.
// Float comparison is bitwise equality except that NaN equals NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString, KindOpaque:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBool:
		return v.b == o.b
	}
	return false
}

// String renders v for logs.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindOpaque:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// MarshalJSON implements json.Marshaler using the wire encoding.
func (v Value) MarshalJSON() ([]byte, error) {
	return encodeValue(v), nil
}

// UnmarshalJSON implements json.Unmarshaler using the wire decoding.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = decodeRaw(data)
	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' || c == 'N' || c == 'I' {
			return s
		}
	}
	return s + ".0"
}
