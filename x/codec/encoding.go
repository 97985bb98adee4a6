package codec

import "fmt"

// DecodeResult is a decoded object together with the codec it was
// framed with.
type DecodeResult[T any] struct {
	Codec Codec
	Data  T
}

// Encode serializes v with the serializer bound to c and frames the
// result.
func Encode(c Codec, v any) ([]byte, error) {
	s, ok := SerializerFor(c)
	if !ok {
		return nil, newError(StageSerialize, c, ErrNoSerializer)
	}

	payload, err := s.Marshal(v)
	if err != nil {
		return nil, newError(StageSerialize, c, fmt.Errorf("%w: %w", ErrSerialize, err))
	}

	framed, err := AddPrefix(c, payload)
	if err != nil {
		return nil, newError(StageFrame, c, err)
	}
	return framed, nil
}

// Decode reads the codec from data, strips the prefix and deserializes
// the payload into v. Buffers tagged with an unknown codec fail at
// StagePeek with an error matching ErrUnknownCodec.
func Decode(data []byte, v any) (Codec, error) {
	code, _, err := ReadCode(data)
	if err != nil {
		return 0, newError(StagePeek, 0, err)
	}
	c, ok := Lookup(code)
	if !ok {
		return 0, newError(StagePeek, 0, &UnknownCodecError{Code: code})
	}

	payload, err := RemovePrefix(data)
	if err != nil {
		return c, newError(StageUnframe, c, err)
	}

	s, ok := SerializerFor(c)
	if !ok {
		return c, newError(StageDeserialize, c, ErrNoSerializer)
	}
	if err := s.Unmarshal(payload, v); err != nil {
		return c, newError(StageDeserialize, c, fmt.Errorf("%w: %w", ErrDeserialize, err))
	}
	return c, nil
}

// DecodeAs decodes data into a fresh T.
func DecodeAs[T any](data []byte) (DecodeResult[T], error) {
	var res DecodeResult[T]
	c, err := Decode(data, &res.Data)
	if err != nil {
		return DecodeResult[T]{}, err
	}
	res.Codec = c
	return res, nil
}
