package http

// Route patterns for the framing HTTP surface.
const (
	routeListCodecs   = "/v1/codecs"
	routeInspectFrame = "/v1/frames/inspect"
	routeStripFrame   = "/v1/frames/strip"
	routeAddFrame     = "/v1/frames/{codec}"
	routeDecodeObject = "/v1/objects/decode"
	routeEncodeObject = "/v1/objects/{codec}"
)

// Route names for mux URL building.
const (
	routeNameListCodecs   = "codecs_list"
	routeNameInspectFrame = "frames_inspect"
	routeNameStripFrame   = "frames_strip"
	routeNameAddFrame     = "frames_add"
	routeNameDecodeObject = "objects_decode"
	routeNameEncodeObject = "objects_encode"
)
