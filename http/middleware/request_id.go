package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/trailhead"
)

// RequestIDHeader carries the request ID to and from clients.
const RequestIDHeader = "X-Request-Id"

// RequestID adds a uuid to the request context under trailhead.RequestIDKey
// and echoes it in the response's RequestIDHeader.
//
// A valid uuid sent in RequestIDHeader is reused.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), trailhead.RequestIDKey, id)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
