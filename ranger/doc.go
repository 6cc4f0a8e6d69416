/*
Package ranger initializes and manages a trailhead app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type, constructed with [New].
[New] wires the route table, the visitor histories, sessions, middlewares
and the page and JSON API handlers together.

[*Ranger.Guide] begins a trailhead app's web server.
By default, [*Ranger.Guide] listens on [DefaultHost]:[DefaultPort] (localhost:3000).
Stop that web server with [*Ranger.Shutdown],
cancel the context.Context passed to [WithContext],
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures a trailhead app through environment variables and [RangerOption].
Environment variables can be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - BASE_URL: the URL the application is served at; its path is prefixed to every route; default: http://localhost:3000/
  - CONTACT_US_EMAIL: the email address shown on error pages; default: hello@example.com
  - CORS_ORIGIN: an origin allowed to call the JSON API from a browser
  - ENVIRONMENT: the environment the application is running in; cf. [trailhead.Environment]
  - HOST: the host the application is running on; default: localhost
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - MAINTENANCE_MODE: when true, every request gets the maintenance page
  - PORT: the port the application should listen on; default: :3000
  - RATE_LIMIT_BURST: the burst of requests allowed per IP address; default: 20
  - RATE_LIMIT_ENABLED: limits requests per IP address; default: true
  - RATE_LIMIT_RATE: the requests allowed per IP address every second; default: 5
  - REDIS_URL, REDIS_PASSWORD: the Redis server for sessions, histories and idempotent responses
  - SENTRY_DSN: reports errors and panics to Sentry
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - TRUST_PROXY: honors X-Forwarded-* headers set by a reverse proxy

Outside of DEMO, DEVELOPMENT and TESTING, SESSION_AUTH_KEY is required.
*/
package ranger
