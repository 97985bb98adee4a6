package codec

import (
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// protoJSON is the proto3 JSON mapping used for proto.Message values.
var protoJSON = newProtoJSONCodec()

type protoJSONCodec struct {
	mo protojson.MarshalOptions
	uo protojson.UnmarshalOptions

	// Output buffers reused across marshals.
	bufferPool sync.Pool
}

func newProtoJSONCodec() *protoJSONCodec {
	return &protoJSONCodec{
		mo: protojson.MarshalOptions{UseProtoNames: true},
		// Unknown fields are dropped so newer producers stay readable.
		uo: protojson.UnmarshalOptions{DiscardUnknown: true},
		bufferPool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, 0, 1024)
				return &buf
			},
		},
	}
}

func (c *protoJSONCodec) marshal(msg proto.Message) ([]byte, error) {
	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)

	buf, err := c.mo.MarshalAppend((*bufPtr)[:0], msg)
	if err != nil {
		return nil, err
	}
	*bufPtr = buf[:0]

	// Return copy since buf goes back to pool
	result := make([]byte, len(buf))
	copy(result, buf)
	return result, nil
}

func (c *protoJSONCodec) unmarshal(data []byte, msg proto.Message) error {
	return c.uo.Unmarshal(data, msg)
}
