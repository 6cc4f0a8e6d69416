package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/logger"
)

// maskedParams are query parameters whose values never reach the logs.
var maskedParams = []string{"password", "token"}

// LogRequest logs the request's method, requested URL, originating IP address,
// and the status code written in response
// using the enclosed implementation of logger.Logger.
//
// LogRequest masks the values of these query parameters:
// - password
// - token
//
// if logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			h.ServeHTTP(sw, r)

			uri := r.URL.Path
			q := r.URL.Query()
			for _, key := range maskedParams {
				trailhead.Mask(q, key)
			}

			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			if sw.status == 0 {
				sw.status = http.StatusOK
			}

			data := map[string]any{
				"duration_ms": time.Since(start).Milliseconds(),
				"method":      r.Method,
				"path":        r.URL.Path,
				"size":        sw.size,
				"status":      sw.status,
				"uri":         uri,
			}

			if ip, ok := r.Context().Value(trailhead.IpAddrKey).(string); ok {
				data["ip_addr"] = ip
			}

			if id, ok := r.Context().Value(trailhead.RequestIDKey).(string); ok {
				data["request_id"] = id
			}

			ls.Info(fmt.Sprintf("%s %s %d", r.Method, uri, sw.status), &logger.LogContext{Data: data})
		})
	}
}

// statusWriter records the status code and body size written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}

	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

// Flush lets streaming handlers flush through the statusWriter.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
