package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/navigator"
	"github.com/xy-planning-network/trailhead/route"
	"github.com/xy-planning-network/trailhead/view"
)

const saveTimeout = 5 * time.Second

// A Handler serves the views of a route.Table and the API for navigating between them.
type Handler struct {
	table  *route.Table
	pages  view.Registry
	parser *req.Parser
	resp   *resp.Responder
	store  history.Store
	logger logger.Logger
}

// A HandlerOptFn configures the *Handler under construction.
type HandlerOptFn func(*Handler)

// WithLogger sets the logger.Logger a Handler and its Navigators report through.
func WithLogger(l logger.Logger) HandlerOptFn {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithStore sets the history.Store visitors' histories are kept in.
//
// Without this option, a history.MemoryStore is used.
func WithStore(s history.Store) HandlerOptFn {
	return func(h *Handler) {
		if s != nil {
			h.store = s
		}
	}
}

// NewHandler constructs a *Handler serving table.
//
// Every Route of table and the not-found Route must have a Page in pages,
// otherwise an error wrapping trailhead.ErrBadConfig returns.
func NewHandler(table *route.Table, pages view.Registry, rp *resp.Responder, opts ...HandlerOptFn) (*Handler, error) {
	if table == nil || rp == nil {
		return nil, fmt.Errorf("%w: a route table and responder are required", trailhead.ErrBadConfig)
	}

	if err := pages.Covers(table); err != nil {
		return nil, err
	}

	h := &Handler{table: table, pages: pages, parser: req.NewParser(), resp: rp}
	for _, opt := range opts {
		opt(h)
	}

	if h.store == nil {
		h.store = history.NewMemoryStore(history.DefaultTTL)
	}

	if h.logger == nil {
		h.logger = logger.New()
	}

	return h, nil
}

// visit builds the Navigator for the visitor of r, resuming their history,
// and returns it with a function saving that history once done.
// The visitor's session expiry is pushed out alongside.
//
// A request without a visitor ID, or whose history cannot be loaded,
// navigates a history nobody keeps.
func (h *Handler) visit(w http.ResponseWriter, r *http.Request, m navigator.Mounter) (*navigator.Navigator, func()) {
	id, _ := r.Context().Value(trailhead.VisitorIDKey).(string)
	opts := []navigator.Option{navigator.WithLogger(h.logger), navigator.WithMounter(m)}
	if id == "" {
		h.logger.Debug("no visitor, history will not be kept", &logger.LogContext{Request: r})
		return navigator.New(h.table, opts...), func() {}
	}

	h.refreshSession(w, r)

	s, err := h.store.Load(r.Context(), id)
	if err != nil {
		// NOTE(dlk): the stored history may still be fine, don't overwrite it with a fresh one
		h.logger.Warn("unable to load history, navigating without it", &logger.LogContext{Error: err, Request: r})
		return navigator.New(h.table, opts...), func() {}
	}

	n := navigator.New(h.table, append(opts, navigator.WithHistory(s))...)
	save := func() {
		// NOTE(dlk): save even if the client went away, the navigation already happened
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := h.store.Save(ctx, id, n.History()); err != nil {
			h.logger.Error("unable to save history", &logger.LogContext{Caller: logger.CurrentCaller(), Error: err, Request: r})
		}
	}

	return n, save
}

// refreshSession pushes out the expiry of the session in the context of r, if any.
func (h *Handler) refreshSession(w http.ResponseWriter, r *http.Request) {
	s, ok := r.Context().Value(trailhead.SessionKey).(session.Sessionable)
	if !ok {
		return
	}

	if err := s.ResetExpiry(w, r); err != nil {
		h.logger.Warn("unable to refresh session", &logger.LogContext{Error: err, Request: r})
	}
}
