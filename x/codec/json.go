package codec

import (
	"encoding/json"

	"google.golang.org/protobuf/proto"
)

var jsonSerializer Serializer = JSONSerializer{}

// JSONSerializer encodes values as JSON (RFC 8259). Protobuf messages are
// routed through protojson so their field names and well-known types
// follow the canonical proto3 JSON mapping.
type JSONSerializer struct{}

func (JSONSerializer) ContentType() string { return JSON.ContentType() }

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		return protoJSON.marshal(msg)
	}
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	if msg, ok := v.(proto.Message); ok {
		return protoJSON.unmarshal(data, msg)
	}
	return json.Unmarshal(data, v)
}
