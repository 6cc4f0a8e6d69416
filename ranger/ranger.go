package ranger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/router"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/route"
	"github.com/xy-planning-network/trailhead/view"
	"github.com/xy-planning-network/trailhead/web"
)

const (
	connectTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// A Ranger manages and exposes all components of a trailhead app to one another.
type Ranger struct {
	ctx      context.Context
	env      trailhead.Environment
	hist     history.Store
	l        logger.Logger
	rdb      *redis.Client
	router   *router.Router
	sessions session.SessionStorer
	srv      *http.Server
	table    *route.Table
	tmpls    fs.FS
	url      *url.URL

	assets fs.FS
	client fs.FS
}

// New constructs a Ranger from the provided options.
// Options run first; whatever they leave unset is then built from environment variables.
func New(opts ...RangerOption) (*Ranger, error) {
	r := new(Ranger)
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}
	}

	if err := r.setup(); err != nil {
		r.close()
		return nil, err
	}

	return r, nil
}

func (r *Ranger) setup() error {
	if r.ctx == nil {
		r.ctx = context.Background()
	}

	if r.env == "" {
		r.env = trailhead.EnvVarOrEnv(environmentEnvVar, trailhead.Development)
	}

	if r.l == nil {
		r.l = defaultLogger(r.env)
	}

	if r.url == nil {
		r.url = trailhead.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)
	}

	var err error
	r.table, err = route.Default(r.url.Path)
	if err != nil {
		return fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
	}

	ctx, cancel := context.WithTimeout(r.ctx, connectTimeout)
	defer cancel()

	if r.hist == nil {
		if r.rdb, err = defaultRedis(ctx); err != nil {
			return err
		}

		r.hist = defaultHistoryStore(r.cmdable())
	}

	if r.sessions == nil {
		if r.sessions, err = defaultSessionStore(r.env, r.l); err != nil {
			return err
		}
	}

	if r.tmpls == nil {
		r.tmpls = os.DirFS(".")
	}

	p := defaultParser(r.env, r.table, r.tmpls)
	rp := defaultResponder(r.l, r.url, p)

	routerOpts := make([]router.RouterOptFn, 0, 2)
	if r.assets != nil {
		routerOpts = append(routerOpts, router.WithAssetsFS(r.assets))
	}
	if r.client != nil {
		routerOpts = append(routerOpts, router.WithClientFS(r.client))
	}

	r.router = router.New(r.env, r.table.Base(), middleware.LogRequest(r.l), routerOpts...)
	r.router.OnEveryRequest(r.everyRequest()...)

	if trailhead.EnvVarOrBool(maintenanceModeEnvVar, false) {
		r.l.Warn("maintenance mode on", nil)
		r.router.CatchAll(MaintModeHandler(rp))
	} else if err := r.handleRoutes(rp); err != nil {
		return err
	}

	if r.srv == nil {
		r.srv = defaultServer(r.ctx)
	}

	return nil
}

func (r *Ranger) everyRequest() []middleware.Adapter {
	mws := []middleware.Adapter{
		middleware.ReportPanic(r.env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
	}

	if trailhead.EnvVarOrBool(trustProxyEnvVar, false) {
		mws = append(mws, middleware.ProxyHeaders())
	}

	if trailhead.EnvVarOrBool(rateLimitEnabledEnvVar, true) {
		mws = append(mws, middleware.RateLimit(defaultVisitors()))
	}

	return append(mws,
		middleware.ForceHTTPS(r.env),
		middleware.Compress(),
		middleware.InjectSession(r.sessions, r.l),
	)
}

func (r *Ranger) handleRoutes(rp *resp.Responder) error {
	h, err := web.NewHandler(r.table, view.Default(), rp, web.WithLogger(r.l), web.WithStore(r.hist))
	if err != nil {
		return err
	}

	r.router.HandleRoutes(h.PageRoutes())

	api := r.router.Subrouter(web.APIPrefix)
	api.HandleRoutes(
		h.APIRoutes(),
		middleware.CORS(os.Getenv(corsOriginEnvVar)),
		middleware.Idempotent(defaultIdempotencyCache(r.cmdable()), web.MaxBodyBytes),
	)

	r.router.HandleNotFound(h.Page)

	return nil
}

func (r *Ranger) cmdable() redis.Cmdable {
	if r.rdb == nil {
		return nil
	}

	return r.rdb
}

func (r *Ranger) close() {
	if r.rdb == nil {
		return
	}

	if err := r.rdb.Close(); err != nil && r.l != nil {
		r.l.Warn("unable to close Redis client", &logger.LogContext{Error: err})
	}
}

func (r *Ranger) EmitEnv() trailhead.Environment          { return r.env }
func (r *Ranger) EmitLogger() logger.Logger               { return r.l }
func (r *Ranger) EmitSessionStore() session.SessionStorer { return r.sessions }
func (r *Ranger) EmitTable() *route.Table                 { return r.table }

// Handler returns the http.Handler serving the app.
func (r *Ranger) Handler() http.Handler { return r.router }

// Guide begins the web server.
//
// These, and (*Ranger).Shutdown, stop Guide:
//
//   - os.Interrupt
//   - syscall.SIGHUP
//   - syscall.SIGINT
//   - syscall.SIGQUIT
//   - syscall.SIGTERM
//   - the context.Context passed into WithContext being done
func (r *Ranger) Guide() error {
	ctx, stop := signal.NotifyContext(
		r.ctx,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s serving %s", r.srv.Addr, r.url), nil)
		r.srv.Handler = r.router
		if err := r.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("could not listen: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		r.l.Error(err.Error(), nil)
		r.close()
		return err
	case <-ctx.Done():
		r.l.Info("received shutdown signal", nil)
	}

	return r.Shutdown()
}

// Shutdown shutdowns the web server.
func (r *Ranger) Shutdown() error {
	defer r.close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	if err := r.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}
