// Package payload provides the metadata value model attached to stored vectors
// and the codec that moves it to and from JSON wire form.
//
// Vector stores keep a small, schemaless metadata record next to every
// embedding. The record is a map from string keys to values that may be a
// string, a 64-bit integer, a 64-bit float, a boolean or null. Anything else
// (nested objects, arrays, application structs) is carried as an Opaque value
// that holds its serialized JSON text.
//
// # Value
//
// Value is a closed tagged variant. The zero Value is Null. Construct values
// with the typed constructors or convert arbitrary Go values with Of:
//
//	p := payload.Payload{
//	    "user_id": payload.String("alice"),
//	    "turn":    payload.Int(3),
//	    "score":   payload.Float(0.82),
//	    "pinned":  payload.Bool(true),
//	    "tags":    payload.Of([]string{"food", "travel"}), // Opaque `["food","travel"]`
//	}
//
// # Codec
//
// Encode turns a Payload into a map of raw JSON values ready to be embedded
// in a request body. Null entries are omitted. Floats always carry a fraction
// or exponent on the wire, so Decode(Encode(p)) reproduces every scalar with
// its original kind:
//
//	wire := payload.Encode(p)
//	back := payload.Decode(wire) // back["turn"].Kind() == payload.KindInt
//
// Decode never fails: integers become Int (or Float on int64 overflow),
// other numbers become Float, JSON null entries are dropped and objects or
// arrays become Opaque values holding their compacted text.
package payload
