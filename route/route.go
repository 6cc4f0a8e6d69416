package route

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xy-planning-network/trailhead"
)

// A View identifies a renderable unit of the user interface.
type View string

const (
	ViewHome     View = "home"
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewSearch   View = "search"
	ViewNotFound View = "not-found"
)

func (v View) String() string { return string(v) }

// A Route binds a literal path to the View mounted when that path is requested.
type Route struct {
	Path string `json:"path"`
	View View   `json:"view"`
}

// Found asserts whether r is a declared Route rather than the not-found Route.
func (r Route) Found() bool { return r.Path != "" && r.View != ViewNotFound }

// A Table holds the Routes of an app in the order they were declared.
// A Table cannot be changed after construction.
type Table struct {
	base   string
	routes []Route
	index  map[string]int
}

// NewTable constructs a *Table served from base.
//
// base may be empty or "/" for an app served from the root of its host;
// otherwise it must begin with "/". A trailing "/" is dropped.
//
// Every Route path must begin with "/" and be unique within the Table,
// and every Route must name a View.
// Failing either returns an error wrapping [trailhead.ErrBadConfig].
func NewTable(base string, routes ...Route) (*Table, error) {
	base, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}

	t := &Table{
		base:   base,
		routes: make([]Route, 0, len(routes)),
		index:  make(map[string]int, len(routes)),
	}

	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("%w: route path %q must begin with /", trailhead.ErrBadConfig, r.Path)
		}

		if r.View == "" {
			return nil, fmt.Errorf("%w: route %q has no view", trailhead.ErrBadConfig, r.Path)
		}

		if _, ok := t.index[r.Path]; ok {
			return nil, fmt.Errorf("%w: duplicate route path %q", trailhead.ErrBadConfig, r.Path)
		}

		t.index[r.Path] = len(t.routes)
		t.routes = append(t.routes, r)
	}

	return t, nil
}

// Default constructs the *Table of the face-search app served from base.
func Default(base string) (*Table, error) {
	return NewTable(
		base,
		Route{Path: "/", View: ViewHome},
		Route{Path: "/login", View: ViewLogin},
		Route{Path: "/register", View: ViewRegister},
		Route{Path: "/search", View: ViewSearch},
	)
}

// Base returns the normalized base path, which is empty when the app is served from the root.
func (t *Table) Base() string { return t.base }

// NotFound returns the Route standing in for any path the Table does not declare.
func (t *Table) NotFound() Route { return Route{View: ViewNotFound} }

// Routes returns a copy of the declared Routes in declaration order.
func (t *Table) Routes() []Route {
	routes := make([]Route, len(t.routes))
	copy(routes, t.routes)
	return routes
}

// Resolve finds the Route whose path matches p once the base path is stripped.
// The query and fragment of p are ignored.
//
// Resolve reports false when p lies outside the base path or matches no Route.
func (t *Table) Resolve(p string) (Route, bool) {
	stripped, ok := t.Strip(p)
	if !ok {
		return Route{}, false
	}

	i, ok := t.index[stripped]
	if !ok {
		return Route{}, false
	}

	return t.routes[i], true
}

// Match resolves p, returning the not-found Route and an *UnmatchedRouteError
// when p matches no Route.
func (t *Table) Match(p string) (Route, error) {
	r, ok := t.Resolve(p)
	if !ok {
		return t.NotFound(), &UnmatchedRouteError{Path: p}
	}

	return r, nil
}

// Strip removes the base path from p, returning the path as the Table declares it.
// The query and fragment of p are dropped and a trailing "/" is trimmed from any path but "/".
//
// Strip reports false when p does not lie under the base path.
func (t *Table) Strip(p string) (string, bool) {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	if t.base != "" {
		switch {
		case p == t.base:
			p = "/"
		case strings.HasPrefix(p, t.base+"/"):
			p = p[len(t.base):]
		default:
			return "", false
		}
	}

	if p == "" {
		p = "/"
	}

	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}

	return p, true
}

// URL returns the base-prefixed path of the first Route mounting v.
// If no Route mounts v, an error wrapping [trailhead.ErrNotExist] returns.
func (t *Table) URL(v View) (string, error) {
	for _, r := range t.routes {
		if r.View == v {
			return t.Join(r.Path), nil
		}
	}

	return "", fmt.Errorf("%w: no route for view %q", trailhead.ErrNotExist, v)
}

// Join prefixes the app path p with the base path.
func (t *Table) Join(p string) string {
	if t.base == "" {
		return p
	}

	if p == "/" {
		return t.base + "/"
	}

	return t.base + p
}

// normalizeBase cleans up a base path so Strip and Join can rely on its shape.
// base may be given as a full URL, in which case only its path is used.
func normalizeBase(base string) (string, error) {
	if u, err := url.Parse(base); err == nil && u.Scheme != "" {
		base = u.Path
	}

	base = strings.TrimRight(base, "/")
	if base == "" {
		return "", nil
	}

	if !strings.HasPrefix(base, "/") {
		return "", fmt.Errorf("%w: base path %q must begin with /", trailhead.ErrBadConfig, base)
	}

	return base, nil
}
