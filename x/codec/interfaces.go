package codec

// Serializer turns values into payload bytes and back. It is the
// structured-text collaborator that Encode and Decode sit on top of.
// Implementations must be safe for concurrent use.
type Serializer interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// SerializerFor returns the serializer bound to c.
func SerializerFor(c Codec) (Serializer, bool) {
	switch c {
	case JSON:
		return jsonSerializer, true
	default:
		return nil, false
	}
}
