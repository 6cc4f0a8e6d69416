package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// Compress gzips or deflates responses for clients that accept it.
func Compress() Adapter {
	return func(h http.Handler) http.Handler {
		return handlers.CompressHandler(h)
	}
}

// ProxyHeaders populates *http.Request.RemoteAddr, URL.Scheme and Host
// from the "X-Forwarded-*" headers set by a reverse proxy.
//
// Only use when running behind a trusted proxy.
func ProxyHeaders() Adapter {
	return func(h http.Handler) http.Handler {
		return handlers.ProxyHeaders(h)
	}
}
