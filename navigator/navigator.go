// Package navigator moves a visitor between the Routes of a [route.Table]
// and mounts the view of wherever they land.
package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/route"
)

//go:generate mockgen -destination=navigatortest/mock_mounter.go -package=navigatortest . Mounter

// A Mounter is the presentation layer a Navigator hands the matched Route to.
type Mounter interface {
	Mount(ctx context.Context, r route.Route) error
}

// A MounterFunc adapts a function into a Mounter.
type MounterFunc func(ctx context.Context, r route.Route) error

// Mount calls fn.
func (fn MounterFunc) Mount(ctx context.Context, r route.Route) error { return fn(ctx, r) }

// noopMounter is the Mounter of a Navigator constructed without one.
var noopMounter = MounterFunc(func(context.Context, route.Route) error { return nil })

// A Navigator owns the current Route of one visitor and their session history.
//
// A Navigator is not safe for concurrent use;
// construct one per visitor per request.
type Navigator struct {
	table   *route.Table
	hist    *history.Stack
	mounter Mounter
	logger  logger.Logger
	current route.Route
}

// An Option configures a Navigator under construction.
type Option func(*Navigator)

// WithHistory resumes navigating from s.
// The current Route is resolved from the current entry of s.
// A nil or invalid s leaves the Navigator on a fresh history.
func WithHistory(s *history.Stack) Option {
	return func(n *Navigator) {
		if s != nil && s.Valid() {
			n.hist = s
		}
	}
}

// WithLogger sets the logger.Logger a Navigator reports navigation with.
func WithLogger(l logger.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithMounter sets the Mounter views are mounted through.
func WithMounter(m Mounter) Option {
	return func(n *Navigator) {
		if m != nil {
			n.mounter = m
		}
	}
}

// New constructs a *Navigator over table.
func New(table *route.Table, opts ...Option) *Navigator {
	n := &Navigator{
		table:   table,
		hist:    new(history.Stack),
		mounter: noopMounter,
		current: table.NotFound(),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.logger == nil {
		n.logger = logger.New(logger.WithLevel(logger.LogLevelError))
	}

	if loc, ok := n.hist.Current(); ok {
		n.current, _ = table.Match(loc)
	}

	return n
}

// Current returns the Route the visitor is on.
// Before any navigation, Current is the not-found Route.
func (n *Navigator) Current() route.Route { return n.current }

// History returns the session history so it can be persisted.
func (n *Navigator) History() *history.Stack { return n.hist }

// Location returns the address of the current entry as it was navigated to.
// Before any navigation, Location returns the base path of the app root.
func (n *Navigator) Location() string {
	loc, ok := n.hist.Current()
	if !ok {
		return n.table.Join("/")
	}

	return loc
}

// Resolve looks up the Route for p without navigating.
func (n *Navigator) Resolve(p string) (route.Route, bool) { return n.table.Resolve(p) }

// Navigate pushes p onto the session history, makes its Route current, and mounts it.
// p is an address as a browser would request it, base path included.
//
// A path outside the base path or matching no Route is still pushed
// and mounts the not-found Route; the *route.UnmatchedRouteError is returned
// alongside it so the caller can respond accordingly.
//
// If ctx is done before anything changes, Navigate returns ctx.Err().
func (n *Navigator) Navigate(ctx context.Context, p string) (route.Route, error) {
	return n.visit(ctx, p, n.hist.Push)
}

// Replace behaves like Navigate but overwrites the current history entry.
func (n *Navigator) Replace(ctx context.Context, p string) (route.Route, error) {
	return n.visit(ctx, p, n.hist.Replace)
}

// Back moves to the previous history entry and mounts its Route.
// At the first entry, Back returns history.ErrNoEntry and nothing changes.
func (n *Navigator) Back(ctx context.Context) (route.Route, error) { return n.traverse(ctx, -1) }

// Forward moves to the next history entry and mounts its Route.
// At the last entry, Forward returns history.ErrNoEntry and nothing changes.
func (n *Navigator) Forward(ctx context.Context) (route.Route, error) { return n.traverse(ctx, 1) }

// visit records p in history with record and mounts the matching Route.
func (n *Navigator) visit(ctx context.Context, p string, record func(string)) (route.Route, error) {
	if err := ctx.Err(); err != nil {
		return n.current, err
	}

	r, matchErr := n.table.Match(p)
	record(p)
	n.current = r

	n.logger.Debug("navigated", &logger.LogContext{
		Data: map[string]any{"location": n.Location(), "view": r.View.String()},
	})

	if err := n.mount(ctx, r); err != nil {
		return r, err
	}

	return r, matchErr
}

// traverse shifts the history cursor by delta and mounts the Route found there.
func (n *Navigator) traverse(ctx context.Context, delta int) (route.Route, error) {
	if err := ctx.Err(); err != nil {
		return n.current, err
	}

	if _, err := n.hist.Go(delta); err != nil {
		return n.current, err
	}

	loc, _ := n.hist.Current()
	r, matchErr := n.table.Match(loc)
	n.current = r

	if err := n.mount(ctx, r); err != nil {
		return r, err
	}

	return r, matchErr
}

func (n *Navigator) mount(ctx context.Context, r route.Route) error {
	if err := n.mounter.Mount(ctx, r); err != nil {
		err = fmt.Errorf("unable to mount %s: %w", r.View, err)
		n.logger.Error(err.Error(), &logger.LogContext{Error: err})
		return err
	}

	return nil
}

// IsUnmatched asserts whether err reports a path matching no Route.
func IsUnmatched(err error) bool {
	var u *route.UnmatchedRouteError
	return errors.As(err, &u)
}
