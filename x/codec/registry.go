package codec

import (
	"fmt"
	"strings"
)

// Codec identifies a serialization format. The set of codecs is closed:
// members are declared here and each one owns a numeric code that is
// written at the front of every framed buffer.
type Codec uint8

const (
	// JSON is the structured-text format (RFC 8259).
	JSON Codec = iota + 1
)

// entry is one row of the registry table.
type entry struct {
	codec       Codec
	code        uint64
	name        string
	contentType string
}

// registry maps every Codec to its published code. Codes are permanent:
// a new codec gets a new unused code, existing rows are never renumbered.
// Common codecs keep codes below 1<<14 so the prefix fits in two bytes.
var registry = [...]entry{
	{codec: JSON, code: 0xF01, name: "json", contentType: "application/json"},
}

// byCode is the reverse index, built once from registry.
var byCode = func() map[uint64]Codec {
	m := make(map[uint64]Codec, len(registry))
	for _, e := range registry {
		if _, dup := m[e.code]; dup {
			panic(fmt.Sprintf("codec: duplicate code %#x", e.code))
		}
		m[e.code] = e.codec
	}
	return m
}()

func lookupEntry(c Codec) (entry, bool) {
	for _, e := range registry {
		if e.codec == c {
			return e, true
		}
	}
	return entry{}, false
}

// Valid reports whether c is a registered codec.
func (c Codec) Valid() bool {
	_, ok := lookupEntry(c)
	return ok
}

// Code returns the numeric code of c, or 0 if c is not registered.
func (c Codec) Code() uint64 {
	e, _ := lookupEntry(c)
	return e.code
}

// Name returns the short lowercase name used on the command line and in
// HTTP routes.
func (c Codec) Name() string {
	if e, ok := lookupEntry(c); ok {
		return e.name
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

// ContentType returns the MIME type of payloads tagged with c.
func (c Codec) ContentType() string {
	if e, ok := lookupEntry(c); ok {
		return e.contentType
	}
	return "application/octet-stream"
}

// String implements fmt.Stringer.
func (c Codec) String() string {
	if e, ok := lookupEntry(c); ok {
		return strings.ToUpper(e.name)
	}
	return c.Name()
}

// Code returns the numeric code registered for c.
func Code(c Codec) uint64 {
	return c.Code()
}

// Lookup maps a numeric code back to its codec. The boolean is false for
// codes this build does not know about; that is an expected outcome for
// buffers written by newer or foreign producers.
func Lookup(code uint64) (Codec, bool) {
	c, ok := byCode[code]
	return c, ok
}

// ParseName resolves a codec by its short name, case-insensitively.
func ParseName(name string) (Codec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range registry {
		if e.name == name {
			return e.codec, true
		}
	}
	return 0, false
}

// All returns every registered codec in registry order.
func All() []Codec {
	out := make([]Codec, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.codec)
	}
	return out
}
