package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// A framed buffer is the unsigned varint of a codec code followed by the
// payload bytes:
//
//	frame  := varint(code) || payload
//	varint := 7 data bits per byte, least significant group first,
//	          high bit set on every byte except the last
//
// The varint is self-terminating, so the payload offset is known without
// any length field.

// PrefixLen returns the number of bytes the prefix for c occupies, or 0 if
// c is not registered.
func PrefixLen(c Codec) int {
	if !c.Valid() {
		return 0
	}
	return uvarintLen(c.Code())
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// AddPrefix returns a new buffer holding the prefix for c followed by
// payload. The payload is copied unmodified; the caller owns the result.
func AddPrefix(c Codec, payload []byte) (framed []byte, err error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(c))
	}

	var buf bytes.Buffer
	defer func() {
		// bytes.Buffer signals allocation failure by panicking.
		if r := recover(); r != nil {
			if r != bytes.ErrTooLarge {
				panic(r)
			}
			framed, err = nil, fmt.Errorf("%w: %w", ErrSinkWrite, bytes.ErrTooLarge)
		}
	}()
	buf.Grow(PrefixLen(c) + len(payload))

	if _, err := WriteFrame(&buf, c, payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendPrefix appends the prefix for c and then payload to dst and
// returns the extended slice.
func AppendPrefix(dst []byte, c Codec, payload []byte) ([]byte, error) {
	if !c.Valid() {
		return dst, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(c))
	}
	dst = binary.AppendUvarint(dst, c.Code())
	return append(dst, payload...), nil
}

// WriteFrame writes the prefix for c followed by payload to w and returns
// the number of bytes written. Any write failure is returned wrapped in
// ErrSinkWrite.
func WriteFrame(w io.Writer, c Codec, payload []byte) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(c))
	}

	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], c.Code())

	written, err := w.Write(hdr[:n])
	if err != nil {
		return written, fmt.Errorf("%w: prefix: %w", ErrSinkWrite, err)
	}
	if len(payload) == 0 {
		return written, nil
	}

	m, err := w.Write(payload)
	written += m
	if err != nil {
		return written, fmt.Errorf("%w: payload: %w", ErrSinkWrite, err)
	}
	return written, nil
}

// ReadCode decodes the leading varint of framed. It returns the code and
// the offset at which the payload starts. Empty, truncated and overflowing
// prefixes yield ErrMalformedVarint; no byte past len(framed) is read.
func ReadCode(framed []byte) (code uint64, n int, err error) {
	code, n = binary.Uvarint(framed)
	if n <= 0 {
		return 0, 0, ErrMalformedVarint
	}
	return code, n, nil
}

// PeekCodec reports which codec framed is tagged with. The boolean is
// false when the prefix is malformed or names a code this build does not
// know. framed is not modified.
func PeekCodec(framed []byte) (Codec, bool) {
	code, _, err := ReadCode(framed)
	if err != nil {
		return 0, false
	}
	return Lookup(code)
}

// RemovePrefix returns the payload of framed. The result aliases framed;
// copy it if framed will be reused. The code is not checked against the
// registry, so payloads tagged by unknown codecs can still be recovered.
// A buffer holding only a prefix yields an empty payload.
func RemovePrefix(framed []byte) ([]byte, error) {
	_, n, err := ReadCode(framed)
	if err != nil {
		return nil, err
	}
	return framed[n:], nil
}

// Split decodes the prefix of framed and returns the registered codec
// and the payload. Unknown codes yield an *UnknownCodecError.
func Split(framed []byte) (Codec, []byte, error) {
	code, n, err := ReadCode(framed)
	if err != nil {
		return 0, nil, err
	}
	c, ok := Lookup(code)
	if !ok {
		return 0, nil, &UnknownCodecError{Code: code}
	}
	return c, framed[n:], nil
}
