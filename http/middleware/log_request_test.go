package middleware_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/logger"
)

func TestLogRequest(t *testing.T) {
	// Arrange + Act
	actual := middleware.LogRequest(nil)

	// Assert
	require.Equal(t, fmt.Sprintf("%p", middleware.NoopAdapter), fmt.Sprintf("%p", actual))

	tcs := []struct {
		name     string
		method   string
		target   string
		ip       string
		handler  http.Handler
		contains []string
		excludes []string
	}{
		{
			name:     "Zero-Value",
			method:   http.MethodGet,
			target:   "/",
			handler:  noopHandler(),
			contains: []string{"'GET / 200'", `"status":200`, `"request_id":"test-id"`},
			excludes: []string{"ip_addr"},
		},
		{
			name:     "With-IP",
			method:   http.MethodPost,
			target:   "/api/navigate",
			ip:       "1.1.1.1",
			handler:  teapotHandler(),
			contains: []string{"'POST /api/navigate 418'", `"ip_addr":"1.1.1.1"`},
		},
		{
			name:     "With-Query-Params-Hid",
			method:   http.MethodGet,
			target:   "/search?password=hunter2&q=jane",
			handler:  noopHandler(),
			contains: []string{"password=" + trailhead.LogMaskVal, "q=jane"},
			excludes: []string{"hunter2"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			color.NoColor = true
			b := new(bytes.Buffer)
			l := logger.New(logger.WithLogger(log.New(b, "", 0)))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, tc.target, nil)
			ctx := context.WithValue(r.Context(), trailhead.RequestIDKey, "test-id")
			if tc.ip != "" {
				ctx = context.WithValue(ctx, trailhead.IpAddrKey, tc.ip)
			}

			r = r.Clone(ctx)

			// Act
			middleware.LogRequest(l)(tc.handler).ServeHTTP(w, r)

			// Assert
			for _, s := range tc.contains {
				require.Contains(t, b.String(), s)
			}

			for _, s := range tc.excludes {
				require.NotContains(t, b.String(), s)
			}
		})
	}
}
