package http

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/compose-network/multicodec/x/codec"
)

// codecInfo describes one registry entry.
type codecInfo struct {
	Name        string `json:"name"`
	Code        uint64 `json:"code"`
	CodeHex     string `json:"code_hex"`
	ContentType string `json:"content_type"`
	PrefixLen   int    `json:"prefix_len"`
}

func newCodecInfo(c codec.Codec) codecInfo {
	return codecInfo{
		Name:        c.Name(),
		Code:        c.Code(),
		CodeHex:     hexutil.EncodeUint64(c.Code()),
		ContentType: c.ContentType(),
		PrefixLen:   codec.PrefixLen(c),
	}
}

// inspectResp is the JSON schema for POST routeInspectFrame.
type inspectResp struct {
	Known       bool   `json:"known"`
	Codec       string `json:"codec,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Code        uint64 `json:"code"`
	CodeHex     string `json:"code_hex"`
	Prefix      string `json:"prefix"` // 0x-hex
	PrefixLen   int    `json:"prefix_len"`
	PayloadLen  int    `json:"payload_len"`
}

// decodeResp is the JSON schema for POST routeDecodeObject.
type decodeResp struct {
	Codec string          `json:"codec"`
	Data  json.RawMessage `json:"data"`
}
