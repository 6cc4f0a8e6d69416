package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/trailhead"
)

// ReportPanic wraps the http.Handler in sentryhttp.Handle
// in order to recover and report panics.
//
// In DEVELOPMENT and TESTING, NoopAdapter returns so panics surface.
func ReportPanic(env trailhead.Environment) Adapter {
	if env.IsDevelopment() || env.IsTesting() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler {
		return sh.Handle(h)
	}
}
