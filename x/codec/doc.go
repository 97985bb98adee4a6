// Package codec tags serialized payloads with a self-describing codec
// prefix.
//
// A framed buffer is the unsigned LEB128 varint of the codec's numeric
// code followed by the payload:
//
//	framed, err := codec.AddPrefix(codec.JSON, payload)
//	c, ok := codec.PeekCodec(framed)       // JSON, true
//	payload, err = codec.RemovePrefix(framed)
//
// The registry of codecs is a fixed table compiled into the binary. Codes
// are published once and never reassigned, so a reader built today can
// always tell a buffer it understands from one written with a codec it
// has never heard of: PeekCodec reports the latter as absent rather than
// failing, and RemovePrefix still returns its payload.
//
// Encode and Decode layer object serialization on top of the framer.
// Decode failures are *Error values whose Stage tells framing problems
// apart from payload problems.
//
// Every function in this package is stateless and safe for concurrent
// use.
package codec
