package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/navigator"
	"github.com/xy-planning-network/trailhead/route"
)

// PageData is what a view's HTML shell renders from.
type PageData struct {
	Title    string
	View     route.View
	Location string

	// Props are handed to the client application as JSON.
	Props map[string]any
}

// Page navigates the visitor to the requested address and renders the view mounted there.
//
// Addresses matching no Route render the not-found view with status 404.
// Requesting the address the visitor is already on, as a reload does,
// replaces the current history entry rather than pushing another.
//
// A GET for a non-canonical address, such as the bare base path or a path with a trailing "/",
// is redirected with status 301 to its canonical address, keeping the query.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if canonical, ok := h.canonical(r); ok {
		opts := []resp.Fn{resp.URL(canonical), resp.Code(http.StatusMovedPermanently)}
		for key, vals := range r.URL.Query() {
			for _, val := range vals {
				opts = append(opts, resp.Param(key, val))
			}
		}

		if err := h.resp.Redirect(w, r, opts...); err != nil {
			h.resp.Err(w, r, err)
		}
		return
	}

	addr := r.URL.Path
	if r.URL.RawQuery != "" {
		addr += "?" + r.URL.RawQuery
	}

	var n *navigator.Navigator
	mounter := navigator.MounterFunc(func(ctx context.Context, rt route.Route) error {
		return h.render(w, r, rt, n.Location())
	})

	n, save := h.visit(w, r, mounter)
	defer save()

	var err error
	if loc, ok := n.History().Current(); ok && loc == addr {
		_, err = n.Replace(r.Context(), addr)
	} else {
		_, err = n.Navigate(r.Context(), addr)
	}

	// NOTE(dlk): mount failures were logged by the Navigator and answered by the Responder
	if navigator.IsUnmatched(err) {
		h.logger.Debug(err.Error(), &logger.LogContext{Request: r})
	}
}

// canonical reports the address r ought to have been made to, when it differs from the one it was.
// Only GET and HEAD requests under the base path are considered.
func (h *Handler) canonical(r *http.Request) (string, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return "", false
	}

	stripped, ok := h.table.Strip(r.URL.Path)
	if !ok {
		return "", false
	}

	canonical := h.table.Join(stripped)
	if canonical == r.URL.Path || strings.HasPrefix(canonical, "//") {
		return "", false
	}

	return canonical, true
}

// render mounts rt by rendering the HTML shell of its view.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, rt route.Route, loc string) error {
	page, err := h.pages.Lookup(rt.View)
	if err != nil {
		h.resp.Err(w, r, err)
		return err
	}

	code := http.StatusOK
	if !rt.Found() {
		code = http.StatusNotFound
	}

	data := PageData{
		Title:    page.Title,
		View:     rt.View,
		Location: loc,
		Props: map[string]any{
			"base":     h.table.Base(),
			"location": loc,
			"routes":   h.routeInfos(),
			"view":     rt.View,
		},
	}

	return h.resp.Html(w, r, resp.Code(code), resp.Tmpls(page.Templates()...), resp.Data(data))
}
