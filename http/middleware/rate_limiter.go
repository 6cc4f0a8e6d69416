package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultVisitorRate  rate.Limit = 5
	defaultVisitorBurst            = 20
	visitorTTL                     = 60 * time.Minute
)

// A Visitor tracks a rate limiter and last seen time.
type Visitor struct {
	LastSeen time.Time
	Limiter  *rate.Limiter
}

// A Visitors maps a Visitor to an IP address.
type Visitors struct {
	val     map[string]Visitor
	limit   rate.Limit
	burst   int
	cleaned time.Time
	sync.Mutex
}

// NewVisitors constructs a *Visitors limiting each visitor
// to 5 requests every second with bursts of up to 20.
func NewVisitors() *Visitors { return NewVisitorsWithLimit(defaultVisitorRate, defaultVisitorBurst) }

// NewVisitorsWithLimit constructs a *Visitors limiting each visitor
// to limit requests every second with bursts of up to burst.
func NewVisitorsWithLimit(limit rate.Limit, burst int) *Visitors {
	return &Visitors{
		val:     make(map[string]Visitor),
		limit:   limit,
		burst:   burst,
		cleaned: time.Now(),
	}
}

// Fetch retrieves the Visitor for the given ip creating a new Visitor if not seen.
func (vs *Visitors) Fetch(ip string) Visitor {
	vs.Lock()
	defer vs.Unlock()

	v, ok := vs.val[ip]
	if !ok {
		v = Visitor{Limiter: rate.NewLimiter(vs.limit, vs.burst)}
	}

	v.LastSeen = time.Now().UTC()
	vs.val[ip] = v
	return v
}

// Len returns the number of visitors tracked.
func (vs *Visitors) Len() int {
	vs.Lock()
	defer vs.Unlock()

	return len(vs.val)
}

// cleanup deletes a Visitor from Visitors if they have not been seen in over an hour.
//
// cleanup does nothing if it last ran less than a minute ago.
func (vs *Visitors) cleanup() {
	vs.Lock()
	defer vs.Unlock()

	if time.Since(vs.cleaned) < time.Minute {
		return
	}

	for ip, v := range vs.val {
		if time.Since(v.LastSeen) > visitorTTL {
			delete(vs.val, ip)
		}
	}

	vs.cleaned = time.Now()
}

// RateLimit encloses the Visitors map and serves the http.Handler,
// responding with 429 once a visitor exceeds its limit.
//
// NOTE: implementation found here:
// https://www.alexedwards.net/blog/how-to-rate-limit-http-requests
//
// If visitors is nil, NoopAdapter returns and this middleware does nothing.
func RateLimit(visitors *Visitors) Adapter {
	if visitors == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetIPAddress(r.Header)
			if ip == unknownIPAddr {
				ip = remoteIP(r.RemoteAddr)
			}

			if !visitors.Fetch(ip).Limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			visitors.cleanup()
			h.ServeHTTP(w, r)
		})
	}
}
