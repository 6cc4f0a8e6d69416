package ranger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/http/template"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/route"
	"github.com/xy-planning-network/trailhead/view"
	"golang.org/x/time/rate"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "hello@example.com"
	contactUsErr     = "Uh oh! We've run into an issue. Please contact us at %s if the issue persists."

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Middleware defaults
	corsOriginEnvVar       = "CORS_ORIGIN"
	maintenanceModeEnvVar  = "MAINTENANCE_MODE"
	rateLimitEnabledEnvVar = "RATE_LIMIT_ENABLED"
	rateLimitRateEnvVar    = "RATE_LIMIT_RATE"
	defaultRateLimitRate   = 5
	rateLimitBurstEnvVar   = "RATE_LIMIT_BURST"
	defaultRateLimitBurst  = 20
	trustProxyEnvVar       = "TRUST_PROXY"

	// Redis defaults
	redisURLEnvVar  = "REDIS_URL"
	redisPassEnvVar = "REDIS_PASSWORD"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionName             = "trailhead"
	sessionMaxAge           = 3600 * 24 * 7
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort + "/"

// defaultLogger constructs a logger.Logger for the environment,
// forwarding to Sentry when SENTRY_DSN is set.
func defaultLogger(env trailhead.Environment) logger.Logger {
	ll := logger.NewLogLevel(trailhead.EnvVarOrString(logLevelEnvVar, "INFO"))
	if ll == logger.LogLevelUnk {
		ll = logger.LogLevelInfo
	}

	return logger.NewLogger(logger.WithEnv(env.String()), logger.WithLevel(ll))
}

// defaultParser constructs a *template.Parse to be used
// when responding to HTTP requests with [*resp.Responder.Html].
//
// defaultParser makes available these functions in an HTML template:
//
//   - "assetURI"
//   - "basePath"
//   - "env"
//   - "isDevelopment"
//   - "isProduction"
//   - "pathFor"
//
// The Responder adds "nonce" and "rootURL".
func defaultParser(env trailhead.Environment, table *route.Table, files fs.FS) *template.Parse {
	return template.NewParser(
		template.WithFS(files),
		template.WithFn(template.AssetURI(env, table.Base(), files)),
		template.WithFn(template.BasePath(table)),
		template.WithFn(template.Env(env)),
		template.WithFn("isDevelopment", env.IsDevelopment),
		template.WithFn("isProduction", env.IsProduction),
		template.WithFn(template.PathFor(table)),
	)
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(l logger.Logger, u *url.URL, p template.Parser) *resp.Responder {
	contact := trailhead.EnvVarOrString(ContactUsEnvVar, defaultContactUs)
	return resp.NewResponder(
		resp.WithContactErrMsg(fmt.Sprintf(contactUsErr, contact)),
		resp.WithErrTemplate(view.ErrorTemplate),
		resp.WithLogger(l),
		resp.WithParser(p),
		resp.WithRootURL(u),
	)
}

// defaultRedis connects to the Redis server at REDIS_URL, if set.
func defaultRedis(ctx context.Context) (*redis.Client, error) {
	addr := os.Getenv(redisURLEnvVar)
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv(redisPassEnvVar)})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: unable to reach Redis at %s: %s", trailhead.ErrBadConfig, addr, err)
	}

	return client, nil
}

// defaultHistoryStore keeps visitors' histories in Redis when connected to it, otherwise in memory.
func defaultHistoryStore(client redis.Cmdable) history.Store {
	if client == nil {
		return history.NewMemoryStore(history.DefaultTTL)
	}

	return history.NewRedisStoreFromClient(client, history.DefaultTTL)
}

// defaultIdempotencyCache caches idempotent responses in Redis when connected to it, otherwise in memory.
func defaultIdempotencyCache(client redis.Cmdable) middleware.IdempotencyCacher {
	if client == nil {
		return middleware.NewIdemResMap()
	}

	return middleware.NewRedisCacheFromClient(client)
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStore relies on these env vars:
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//   - REDIS_URL and REDIS_PASSWORD, to store sessions in Redis
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
// In environments that can use stubbed services (DEMO, DEVELOPMENT and TESTING),
// missing keys are generated, so sessions do not outlive the process.
func defaultSessionStore(env trailhead.Environment, l logger.Logger) (session.SessionStorer, error) {
	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: sessionName,
	}

	if env.CanUseServiceStub() {
		if cfg.AuthKey == "" {
			l.Warn(SessionAuthKeyEnvVar+" not set, generating one", nil)
			cfg.AuthKey = randomHex(32)
		}

		if cfg.EncryptKey == "" {
			l.Warn(SessionEncryptKeyEnvVar+" not set, generating one", nil)
			cfg.EncryptKey = randomHex(32)
		}
	}

	args := []session.ServiceOpt{session.WithMaxAge(sessionMaxAge)}
	if addr := os.Getenv(redisURLEnvVar); addr != "" {
		args = append(args, session.WithRedis(addr, os.Getenv(redisPassEnvVar)))
	}

	return session.NewStoreService(cfg, args...)
}

// defaultVisitors limits each IP address to RATE_LIMIT_RATE requests a second
// with bursts of RATE_LIMIT_BURST.
func defaultVisitors() *middleware.Visitors {
	return middleware.NewVisitorsWithLimit(
		rate.Limit(trailhead.EnvVarOrInt(rateLimitRateEnvVar, defaultRateLimitRate)),
		trailhead.EnvVarOrInt(rateLimitBurstEnvVar, defaultRateLimitBurst),
	)
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := trailhead.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         trailhead.EnvVarOrString(hostEnvVar, DefaultHost) + port,
		IdleTimeout:  trailhead.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  trailhead.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: trailhead.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}

	return hex.EncodeToString(b)
}
