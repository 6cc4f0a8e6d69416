package web

import (
	"net/http"

	"github.com/xy-planning-network/trailhead/http/router"
)

// APIPrefix is where APIRoutes are registered beneath the base path.
const APIPrefix = "/api"

// PageRoutes returns a GET router.Route rendering each Route of the table.
//
// Register Page as the not-found handler as well
// so unmatched addresses render the not-found view.
func (h *Handler) PageRoutes() []router.Route {
	routes := h.table.Routes()
	rs := make([]router.Route, 0, len(routes))
	for _, rt := range routes {
		rs = append(rs, router.Route{Path: rt.Path, Method: http.MethodGet, Handler: h.Page})
	}

	return rs
}

// APIRoutes returns the router.Routes of the navigation API, relative to APIPrefix.
func (h *Handler) APIRoutes() []router.Route {
	rs := []router.Route{
		{Path: "/routes", Method: http.MethodGet, Handler: h.Routes},
		{Path: "/resolve", Method: http.MethodGet, Handler: h.Resolve},
		{Path: "/location", Method: http.MethodGet, Handler: h.Location},
	}

	moves := []struct {
		path    string
		handler http.HandlerFunc
	}{
		{"/navigate", h.Navigate},
		{"/replace", h.Replace},
		{"/back", h.Back},
		{"/forward", h.Forward},
	}

	for _, m := range moves {
		rs = append(rs,
			router.Route{Path: m.path, Method: http.MethodPost, Handler: m.handler},
			router.Route{Path: m.path, Method: http.MethodOptions, Handler: h.Preflight},
		)
	}

	return rs
}
