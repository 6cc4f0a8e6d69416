package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under trailhead.SessionKey, and the visitor it identifies under trailhead.VisitorIDKey.
//
// Failing to read or save the session is logged and the request carries on without it.
// A session holding an unusable visitor ID is expired, so the next request starts a fresh one.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer, ls logger.Logger) Adapter {
	if store == nil {
		return NoopAdapter
	}

	if ls == nil {
		ls = logger.New()
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := store.GetSession(r)
			if s == nil {
				ls.Warn("unable to get session", &logger.LogContext{Error: err, Request: r})
				h.ServeHTTP(w, r)
				return
			}

			// NOTE(dlk): a cookie that fails decoding still yields a fresh session
			if err != nil {
				ls.Debug("replacing undecodable session", &logger.LogContext{Error: err})
			}

			ctx := context.WithValue(r.Context(), trailhead.SessionKey, s)
			id, err := s.VisitorID(w, r)
			switch {
			case errors.Is(err, session.ErrNotValid):
				ls.Warn("expiring session with unusable visitor", &logger.LogContext{Error: err, Request: r})
				if err := s.Delete(w, r); err != nil {
					ls.Error("unable to expire session", &logger.LogContext{Error: err, Request: r})
				}
			case err != nil:
				ls.Warn("unable to identify visitor", &logger.LogContext{Error: err, Request: r})
			default:
				ctx = context.WithValue(ctx, trailhead.VisitorIDKey, id)
			}

			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
