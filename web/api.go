package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/navigator"
	"github.com/xy-planning-network/trailhead/route"
)

// MaxBodyBytes caps the size of API request bodies.
const MaxBodyBytes = 1 << 12

// RouteInfo describes a Route to API clients.
type RouteInfo struct {
	Path string     `json:"path"`
	View route.View `json:"view"`

	// URL is Path prefixed with the base path, empty for the not-found Route.
	URL string `json:"url"`
}

type badRequestData struct {
	Error            string                `json:"error"`
	ValidationErrors []req.ValidationError `json:"validationErrors,omitempty"`
}

// LocationInfo describes where a visitor is in their history.
type LocationInfo struct {
	Location   string     `json:"location"`
	Path       string     `json:"path"`
	View       route.View `json:"view"`
	CanBack    bool       `json:"canBack"`
	CanForward bool       `json:"canForward"`
}

// navigateBody is the body POSTed to navigate or replace.
// Path is relative to the app, without the base path.
type navigateBody struct {
	Path string `json:"path" validate:"required,location"`
}

type resolveQuery struct {
	Path string `schema:"path" validate:"required,location"`
}

// Routes responds with every Route the app declares.
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"base": h.table.Base(), "routes": h.routeInfos()}
	if err := h.resp.Json(w, r, resp.Data(data)); err != nil {
		h.logger.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
	}
}

// Resolve responds with the Route the "path" query parameter resolves to, without navigating.
// The path is relative to the app.
//
// A path matching no Route responds with the not-found Route and status 404.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := new(resolveQuery)
	if err := h.parser.ParseQueryParams(r.URL.Query(), q); err != nil {
		h.badRequest(w, r, err)
		return
	}

	code := http.StatusOK
	rt, ok := h.table.Resolve(h.table.Join(q.Path))
	if !ok {
		rt = h.table.NotFound()
		code = http.StatusNotFound
	}

	if err := h.resp.Json(w, r, resp.Code(code), resp.Data(h.routeInfo(rt))); err != nil {
		h.logger.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
	}
}

// Location responds with where the visitor currently is.
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	n, _ := h.visit(w, r, nil)
	h.respondLocation(w, r, n, nil)
}

// Navigate pushes the POSTed path onto the visitor's history.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(ctx context.Context, n *navigator.Navigator, addr string) error {
		_, err := n.Navigate(ctx, addr)
		return err
	})
}

// Replace overwrites the visitor's current history entry with the POSTed path.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(ctx context.Context, n *navigator.Navigator, addr string) error {
		_, err := n.Replace(ctx, addr)
		return err
	})
}

// Back moves the visitor to their previous history entry.
// At the first entry, Back responds with status 409.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	n, save := h.visit(w, r, nil)
	defer save()

	_, err := n.Back(r.Context())
	h.respondLocation(w, r, n, err)
}

// Forward moves the visitor to their next history entry.
// At the last entry, Forward responds with status 409.
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	n, save := h.visit(w, r, nil)
	defer save()

	_, err := n.Forward(r.Context())
	h.respondLocation(w, r, n, err)
}

// Preflight answers CORS preflight requests the CORS middleware lets through.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// move decodes the POSTed path and hands it, joined with the base path, to fn.
func (h *Handler) move(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, *navigator.Navigator, string) error,
) {
	body := new(navigateBody)
	if err := h.parser.ParseBody(http.MaxBytesReader(w, r.Body, MaxBodyBytes), body); err != nil {
		h.badRequest(w, r, err)
		return
	}

	n, save := h.visit(w, r, nil)
	defer save()

	err := fn(r.Context(), n, h.table.Join(body.Path))
	h.respondLocation(w, r, n, err)
}

// respondLocation writes the location of n, choosing the status code from err.
func (h *Handler) respondLocation(w http.ResponseWriter, r *http.Request, n *navigator.Navigator, err error) {
	code := http.StatusOK
	switch {
	case err == nil:
	case navigator.IsUnmatched(err):
		code = http.StatusNotFound
	case errors.Is(err, history.ErrNoEntry):
		code = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	default:
		h.resp.Err(w, r, err)
		return
	}

	if err := h.resp.Json(w, r, resp.Code(code), resp.Data(h.locationInfo(n))); err != nil {
		h.logger.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
	}
}

// badRequest responds with err and, when err holds them, the req.ValidationErrors.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug(err.Error(), &logger.LogContext{Error: err, Request: r})
	data := badRequestData{Error: err.Error()}

	var verrs req.ValidationErrors
	if errors.As(err, &verrs) {
		data.ValidationErrors = verrs
	}

	if err := h.resp.Json(w, r, resp.Code(http.StatusBadRequest), resp.Data(data)); err != nil {
		h.logger.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
	}
}

func (h *Handler) locationInfo(n *navigator.Navigator) LocationInfo {
	cur := n.Current()
	return LocationInfo{
		Location:   n.Location(),
		Path:       cur.Path,
		View:       cur.View,
		CanBack:    n.History().CanBack(),
		CanForward: n.History().CanForward(),
	}
}

func (h *Handler) routeInfo(rt route.Route) RouteInfo {
	info := RouteInfo{Path: rt.Path, View: rt.View}
	if rt.Found() {
		info.URL = h.table.Join(rt.Path)
	}

	return info
}

func (h *Handler) routeInfos() []RouteInfo {
	routes := h.table.Routes()
	infos := make([]RouteInfo, 0, len(routes))
	for _, rt := range routes {
		infos = append(infos, h.routeInfo(rt))
	}

	return infos
}
