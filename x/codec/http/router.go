package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterMux binds gorilla/mux routes. Fixed paths are registered before
// the {codec} patterns so "inspect" and "strip" are never taken for codec
// names.
func (h *Handler) RegisterMux(r *mux.Router) {
	r.HandleFunc(routeListCodecs, h.handleListCodecs).
		Methods(http.MethodGet).
		Name(routeNameListCodecs)

	r.HandleFunc(routeInspectFrame, h.handleInspect).
		Methods(http.MethodPost).
		Name(routeNameInspectFrame)
	r.HandleFunc(routeStripFrame, h.handleStrip).
		Methods(http.MethodPost).
		Name(routeNameStripFrame)
	r.HandleFunc(routeAddFrame, h.handleAddPrefix).
		Methods(http.MethodPost).
		Name(routeNameAddFrame)

	r.HandleFunc(routeDecodeObject, h.handleDecodeObject).
		Methods(http.MethodPost).
		Name(routeNameDecodeObject)
	r.HandleFunc(routeEncodeObject, h.handleEncodeObject).
		Methods(http.MethodPost).
		Name(routeNameEncodeObject)
}
