package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	apicommon "github.com/compose-network/multicodec/server/api"
	"github.com/compose-network/multicodec/x/codec"
)

const labelUnknown = "unknown"

type Handler struct {
	metrics *Metrics
	log     zerolog.Logger
}

// NewHandler builds the framing handler. metrics may be nil.
func NewHandler(metrics *Metrics, log zerolog.Logger) *Handler {
	return &Handler{
		metrics: metrics,
		log:     log.With().Str("component", "codec-http").Logger(),
	}
}

func (h *Handler) handleListCodecs(w http.ResponseWriter, _ *http.Request) {
	all := codec.All()
	out := make([]codecInfo, 0, len(all))
	for _, c := range all {
		out = append(out, newCodecInfo(c))
	}
	apicommon.WriteJSON(w, http.StatusOK, map[string]any{"codecs": out})
}

// handleAddPrefix frames the raw request body with the codec named in the
// path.
func (h *Handler) handleAddPrefix(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	c, ok := h.codecFromPath(w, r)
	if !ok {
		h.metrics.RecordFrame(opAddPrefix, labelUnknown, outcomeUnknownCodec, 0, time.Since(start))
		return
	}

	payload, ok := h.readBody(w, r)
	if !ok {
		h.metrics.RecordFrame(opAddPrefix, c.Name(), outcomeError, 0, time.Since(start))
		return
	}

	framed, err := codec.AddPrefix(c, payload)
	if err != nil {
		h.log.Error().Err(err).Str("codec", c.Name()).Int("payload_len", len(payload)).Msg("Failed to add prefix")
		apicommon.WriteError(w, r, http.StatusInternalServerError, "frame_failed", "failed to frame payload", nil)
		h.metrics.RecordFrame(opAddPrefix, c.Name(), outcomeError, len(payload), time.Since(start))
		return
	}

	h.metrics.RecordFrame(opAddPrefix, c.Name(), outcomeOK, len(payload), time.Since(start))
	apicommon.WriteBytes(w, http.StatusOK, "application/octet-stream", framed)
}

// handleInspect reports the codec prefix of the request body without
// touching the payload.
func (h *Handler) handleInspect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	framed, ok := h.readBody(w, r)
	if !ok {
		h.metrics.RecordFrame(opInspect, labelUnknown, outcomeError, 0, time.Since(start))
		return
	}

	code, n, err := codec.ReadCode(framed)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "malformed_prefix", err.Error(), nil)
		h.metrics.RecordFrame(opInspect, labelUnknown, outcomeMalformed, 0, time.Since(start))
		return
	}

	resp := inspectResp{
		Code:       code,
		CodeHex:    hexutil.EncodeUint64(code),
		Prefix:     hexutil.Encode(framed[:n]),
		PrefixLen:  n,
		PayloadLen: len(framed) - n,
	}
	outcome, label := outcomeUnknownCodec, labelUnknown
	if c, known := codec.Lookup(code); known {
		resp.Known = true
		resp.Codec = c.Name()
		resp.ContentType = c.ContentType()
		outcome, label = outcomeOK, c.Name()
	}

	h.metrics.RecordFrame(opInspect, label, outcome, resp.PayloadLen, time.Since(start))
	apicommon.WriteJSON(w, http.StatusOK, resp)
}

// handleStrip returns the payload of the request body. Unknown codecs are
// refused unless force=true, in which case the payload is returned as
// opaque bytes.
func (h *Handler) handleStrip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	force, err := parseForce(r)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_query", "force must be a boolean", nil)
		return
	}

	framed, ok := h.readBody(w, r)
	if !ok {
		h.metrics.RecordFrame(opRemovePrefix, labelUnknown, outcomeError, 0, time.Since(start))
		return
	}

	code, _, err := codec.ReadCode(framed)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "malformed_prefix", err.Error(), nil)
		h.metrics.RecordFrame(opRemovePrefix, labelUnknown, outcomeMalformed, 0, time.Since(start))
		return
	}

	c, known := codec.Lookup(code)
	if !known && !force {
		apicommon.WriteError(
			w, r,
			http.StatusUnsupportedMediaType,
			"unknown_codec",
			fmt.Sprintf("codec code %s is not registered", hexutil.EncodeUint64(code)),
			map[string]any{"code": code},
		)
		h.metrics.RecordFrame(opRemovePrefix, labelUnknown, outcomeUnknownCodec, 0, time.Since(start))
		return
	}

	payload, err := codec.RemovePrefix(framed)
	if err != nil {
		apicommon.WriteError(w, r, http.StatusBadRequest, "malformed_prefix", err.Error(), nil)
		h.metrics.RecordFrame(opRemovePrefix, labelUnknown, outcomeMalformed, 0, time.Since(start))
		return
	}

	label := labelUnknown
	if known {
		label = c.Name()
	}
	h.metrics.RecordFrame(opRemovePrefix, label, outcomeOK, len(payload), time.Since(start))
	apicommon.WriteBytes(w, http.StatusOK, c.ContentType(), payload)
}

// handleEncodeObject serializes a JSON request body with the codec named
// in the path and frames it.
func (h *Handler) handleEncodeObject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	c, ok := h.codecFromPath(w, r)
	if !ok {
		h.metrics.RecordFrame(opEncode, labelUnknown, outcomeUnknownCodec, 0, time.Since(start))
		return
	}

	body, ok := h.readBody(w, r)
	if !ok {
		h.metrics.RecordFrame(opEncode, c.Name(), outcomeError, 0, time.Since(start))
		return
	}

	if !json.Valid(body) {
		apicommon.WriteError(w, r, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", nil)
		h.metrics.RecordFrame(opEncode, c.Name(), outcomeError, 0, time.Since(start))
		return
	}

	framed, err := codec.Encode(c, json.RawMessage(body))
	if err != nil {
		h.writeCodecError(w, r, err)
		h.metrics.RecordFrame(opEncode, c.Name(), outcomeError, 0, time.Since(start))
		return
	}

	h.metrics.RecordFrame(opEncode, c.Name(), outcomeOK, len(framed)-codec.PrefixLen(c), time.Since(start))
	apicommon.WriteBytes(w, http.StatusOK, "application/octet-stream", framed)
}

// handleDecodeObject unframes and deserializes the request body and
// returns the object as JSON.
func (h *Handler) handleDecodeObject(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	framed, ok := h.readBody(w, r)
	if !ok {
		h.metrics.RecordFrame(opDecode, labelUnknown, outcomeError, 0, time.Since(start))
		return
	}

	var data json.RawMessage
	c, err := codec.Decode(framed, &data)
	if err != nil {
		h.writeCodecError(w, r, err)
		label := labelUnknown
		if c.Valid() {
			label = c.Name()
		}
		h.metrics.RecordFrame(opDecode, label, outcomeFor(err), 0, time.Since(start))
		return
	}

	h.metrics.RecordFrame(opDecode, c.Name(), outcomeOK, len(data), time.Since(start))
	apicommon.WriteJSON(w, http.StatusOK, decodeResp{Codec: c.Name(), Data: data})
}

func (h *Handler) codecFromPath(w http.ResponseWriter, r *http.Request) (codec.Codec, bool) {
	name := mux.Vars(r)["codec"]
	c, ok := codec.ParseName(name)
	if !ok {
		apicommon.WriteError(
			w, r,
			http.StatusNotFound,
			"unknown_codec",
			fmt.Sprintf("codec %q is not registered", name),
			nil,
		)
		return 0, false
	}
	return c, true
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apicommon.WriteError(
				w, r,
				http.StatusRequestEntityTooLarge,
				"body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				nil,
			)
			return nil, false
		}
		h.log.Warn().Err(err).Msg("Failed to read request body")
		apicommon.WriteError(w, r, http.StatusBadRequest, "read_failed", "failed to read request body", nil)
		return nil, false
	}
	return body, true
}

// writeCodecError maps codec failures onto HTTP statuses.
func (h *Handler) writeCodecError(w http.ResponseWriter, r *http.Request, err error) {
	var cerr *codec.Error
	stage := ""
	if errors.As(err, &cerr) {
		stage = cerr.Stage.String()
	}
	details := map[string]any{"stage": stage}

	switch {
	case errors.Is(err, codec.ErrMalformedVarint):
		apicommon.WriteError(w, r, http.StatusBadRequest, "malformed_prefix", err.Error(), details)
	case errors.Is(err, codec.ErrUnknownCodec):
		apicommon.WriteError(w, r, http.StatusUnsupportedMediaType, "unknown_codec", err.Error(), details)
	case errors.Is(err, codec.ErrDeserialize):
		apicommon.WriteError(w, r, http.StatusUnprocessableEntity, "deserialize_failed", err.Error(), details)
	case errors.Is(err, codec.ErrSerialize):
		apicommon.WriteError(w, r, http.StatusUnprocessableEntity, "serialize_failed", err.Error(), details)
	default:
		h.log.Error().Err(err).Str("stage", stage).Msg("Codec operation failed")
		apicommon.WriteError(w, r, http.StatusInternalServerError, "codec_failed", "codec operation failed", details)
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, codec.ErrMalformedVarint):
		return outcomeMalformed
	case errors.Is(err, codec.ErrUnknownCodec):
		return outcomeUnknownCodec
	default:
		return outcomeError
	}
}

func parseForce(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("force")
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
