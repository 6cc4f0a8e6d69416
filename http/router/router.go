package router

import (
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/middleware"
)

const (
	assetsPath       = "/assets/"
	assetsPublicPath = "client/public"
	clientDistPath   = "/client/dist/"
	clientDistDir    = "client/dist"
)

// A Route maps a path and HTTP method to an [http.HandlerFunc].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	Path        string
	Method      string
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
}

// Router routes requests for resources to their location in a standard trailhead app layout.
//
// Every path a Router registers lives under its base path.
type Router struct {
	Env           trailhead.Environment
	base          string
	everyReqStack []middleware.Adapter
	logReq        middleware.Adapter
	root          *mux.Router
	r             *mux.Router
}

// A RouterOptFn configures the *Router being constructed.
type RouterOptFn func(*routerCfg)

type routerCfg struct {
	assets fs.FS
	client fs.FS
}

// WithAssetsFS serves the public assets from fsys instead of client/public.
func WithAssetsFS(fsys fs.FS) RouterOptFn {
	return func(c *routerCfg) { c.assets = fsys }
}

// WithClientFS serves the bundled client from fsys instead of client/dist.
func WithClientFS(fsys fs.FS) RouterOptFn {
	return func(c *routerCfg) { c.client = fsys }
}

// New constructs a [*Router] for the given environment serving everything under base.
// An empty base serves from the root of the host.
//
// Static files are served under base + "/client/dist/" and base + "/assets/".
func New(env trailhead.Environment, base string, logReq middleware.Adapter, opts ...RouterOptFn) *Router {
	cfg := &routerCfg{
		assets: os.DirFS(assetsPublicPath),
		client: os.DirFS(clientDistDir),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if logReq == nil {
		logReq = middleware.NoopAdapter
	}

	base = strings.TrimSuffix(base, "/")

	root := mux.NewRouter()
	r := root
	if base != "" {
		r = root.PathPrefix(base).Subrouter()
	}

	cacheControl := cacheControlMiddleware()

	// NOTE(dlk): direct reqs for the client to its distribution
	r.PathPrefix(clientDistPath).Handler(middleware.Chain(
		http.StripPrefix(base+clientDistPath, http.FileServer(http.FS(cfg.client))),
		cacheControl,
		logReq,
	))

	// NOTE(dlk): direct reqs for assets to public path
	r.PathPrefix(assetsPath).Handler(middleware.Chain(
		http.StripPrefix(base+assetsPath, http.FileServer(http.FS(cfg.assets))),
		cacheControl,
		logReq,
	))

	return &Router{Env: env, base: base, logReq: logReq, root: root, r: r}
}

// Base returns the path prefix every route is registered under.
func (r *Router) Base() string { return r.base }

// CatchAll sends every request to handler, for e.g. maintenance mode.
//
// Routes registered before CatchAll still match first.
func (r *Router) CatchAll(handler http.HandlerFunc) {
	r.root.PathPrefix("/").Handler(middleware.Chain(
		handler,
		append(r.everyReqStack, r.logReq)...,
	))
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.HandlerFunc] as the default function
// for when no other registered Route is matched,
// whether or not the request falls under the base path.
func (r *Router) HandleNotFound(handler http.HandlerFunc) {
	r.root.NotFoundHandler = middleware.Chain(
		handler,
		append(r.everyReqStack, r.logReq)...,
	)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := make([]middleware.Adapter, 0, len(r.everyReqStack)+len(middlewares)+len(route.Middlewares)+1)
		mws = append(mws, r.everyReqStack...)
		mws = append(mws, r.logReq)
		mws = append(mws, middlewares...)
		mws = append(mws, route.Middlewares...)
		r.r.Handle(route.Path, middleware.Chain(route.Handler, mws...)).Methods(route.Method)
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
//
// Call OnEveryRequest before registering routes.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.root.ServeHTTP(w, req)
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix
// beneath the base path.
//
// e.g., r.Subrouter("/api") handles requests to endpoints like /app/api/routes
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:           r.Env,
		base:          r.base + prefix,
		everyReqStack: append([]middleware.Adapter{}, r.everyReqStack...),
		logReq:        r.logReq,
		root:          r.root,
		r:             r.r.PathPrefix(prefix).Subrouter(),
	}
}

// cacheControlMiddleware helps by adding a "Cache-Control" header to the response.
func cacheControlMiddleware() middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "max-age=2592000") // 30 days
			handler.ServeHTTP(w, r)
		})
	}
}
