package codec

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCodec    = errors.New("codec: unknown codec")
	ErrMalformedVarint = errors.New("codec: malformed varint prefix")
	ErrSinkWrite       = errors.New("codec: sink write failed")
	ErrSerialize       = errors.New("codec: serialization failed")
	ErrDeserialize     = errors.New("codec: deserialization failed")
	ErrNoSerializer    = errors.New("codec: no serializer for codec")
)

// UnknownCodecError reports a prefix whose code is not in the registry.
type UnknownCodecError struct {
	Code uint64
}

func (e *UnknownCodecError) Error() string {
	return fmt.Sprintf("%s: code %#x", ErrUnknownCodec, e.Code)
}

// Is lets errors.Is match ErrUnknownCodec.
func (e *UnknownCodecError) Is(target error) bool {
	return target == ErrUnknownCodec
}

// Stage identifies where in the encode/decode pipeline an error occurred.
type Stage int

const (
	StageSerialize Stage = iota
	StageFrame
	StagePeek
	StageUnframe
	StageDeserialize
)

// String returns the string representation of Stage
func (s Stage) String() string {
	switch s {
	case StageSerialize:
		return "serialize"
	case StageFrame:
		return "frame"
	case StagePeek:
		return "peek"
	case StageUnframe:
		return "unframe"
	case StageDeserialize:
		return "deserialize"
	default:
		return "unknown"
	}
}

// Error is returned by Encode and Decode. It separates framing failures
// from payload-content failures so callers can tell which side is broken.
type Error struct {
	Stage Stage
	Codec Codec
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Codec.Valid() {
		return fmt.Sprintf("codec %s %s: %v", e.Codec.Name(), e.Stage, e.Cause)
	}
	return fmt.Sprintf("codec %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause error
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(stage Stage, c Codec, cause error) *Error {
	return &Error{Stage: stage, Codec: c, Cause: cause}
}
