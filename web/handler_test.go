package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/history/historytest"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/http/template"
	"github.com/xy-planning-network/trailhead/logger"
	"github.com/xy-planning-network/trailhead/route"
	"github.com/xy-planning-network/trailhead/view"
	"github.com/xy-planning-network/trailhead/web"
)

const visitor = "visitor-1"

func quietLogger() logger.Logger {
	return logger.New(logger.WithLogger(log.New(new(bytes.Buffer), "", 0)))
}

func newTestHandler(t *testing.T, base string, opts ...web.HandlerOptFn) *web.Handler {
	t.Helper()

	table, err := route.Default(base)
	require.NoError(t, err)

	p := template.NewParser(template.WithFS(fstest.MapFS{}))
	p.AddFn(template.PathFor(table))
	p.AddFn(template.AssetURI(trailhead.Testing, table.Base(), nil))

	rp := resp.NewResponder(
		resp.WithLogger(quietLogger()),
		resp.WithParser(p),
		resp.WithErrTemplate(view.ErrorTemplate),
	)

	h, err := web.NewHandler(table, view.Default(), rp, append(opts, web.WithLogger(quietLogger()))...)
	require.NoError(t, err)

	return h
}

func withVisitor(r *http.Request, id string) *http.Request {
	return r.Clone(context.WithValue(r.Context(), trailhead.VisitorIDKey, id))
}

func TestNewHandler(t *testing.T) {
	table, err := route.Default("")
	require.NoError(t, err)

	rp := resp.NewResponder()

	t.Run("Nil-Table", func(t *testing.T) {
		_, err := web.NewHandler(nil, view.Default(), rp)
		require.ErrorIs(t, err, trailhead.ErrBadConfig)
	})

	t.Run("Nil-Responder", func(t *testing.T) {
		_, err := web.NewHandler(table, view.Default(), nil)
		require.ErrorIs(t, err, trailhead.ErrBadConfig)
	})

	t.Run("Missing-Page", func(t *testing.T) {
		pages := view.Default()
		delete(pages, route.ViewSearch)

		_, err := web.NewHandler(table, pages, rp)
		require.ErrorIs(t, err, trailhead.ErrBadConfig)
	})

	t.Run("Missing-Not-Found-Page", func(t *testing.T) {
		pages := view.Default()
		delete(pages, route.ViewNotFound)

		_, err := web.NewHandler(table, pages, rp)
		require.ErrorIs(t, err, trailhead.ErrBadConfig)
	})

	t.Run("Ok", func(t *testing.T) {
		h, err := web.NewHandler(table, view.Default(), rp)
		require.NoError(t, err)
		require.NotNil(t, h)
	})
}

func TestHandlerPage(t *testing.T) {
	tcs := []struct {
		name   string
		base   string
		target string
		code   int
		view   route.View
		title  string
	}{
		{"Home", "", "/", http.StatusOK, route.ViewHome, "Home"},
		{"Login", "", "/login", http.StatusOK, route.ViewLogin, "Log In"},
		{"Register", "", "/register", http.StatusOK, route.ViewRegister, "Register a Missing Person"},
		{"Search", "", "/search", http.StatusOK, route.ViewSearch, "Search"},
		{"With-Query", "", "/search?q=jane", http.StatusOK, route.ViewSearch, "Search"},
		{"Unmatched", "", "/nonexistent", http.StatusNotFound, route.ViewNotFound, "Page Not Found"},
		{"Case-Sensitive", "", "/Login", http.StatusNotFound, route.ViewNotFound, "Page Not Found"},
		{"Base-Home", "/app", "/app/", http.StatusOK, route.ViewHome, "Home"},
		{"Base-Login", "/app", "/app/login", http.StatusOK, route.ViewLogin, "Log In"},
		{"Outside-Base", "/app", "/login", http.StatusNotFound, route.ViewNotFound, "Page Not Found"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			h := newTestHandler(t, tc.base)
			w := httptest.NewRecorder()
			r := withVisitor(httptest.NewRequest(http.MethodGet, tc.target, nil), visitor)

			// Act
			h.Page(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			body := w.Body.String()
			require.Contains(t, body, "<title>"+tc.title+"</title>")
			require.Contains(t, body, `data-view="`+tc.view.String()+`"`)
			require.Contains(t, body, `data-location="`+tc.target+`"`)
		})
	}
}

func TestHandlerPageRedirect(t *testing.T) {
	tcs := []struct {
		name     string
		base     string
		target   string
		expected string
	}{
		{"Trailing-Slash", "", "/search/", "/search"},
		{"Trailing-Slash-Query", "", "/search/?q=jane", "/search?q=jane"},
		{"Unmatched-Trailing-Slash", "", "/nonexistent/", "/nonexistent"},
		{"Bare-Base", "/app", "/app", "/app/"},
		{"Bare-Base-Query", "/app", "/app?q=1&q=2", "/app/?q=1&q=2"},
		{"Base-Trailing-Slash", "/app", "/app/login/", "/app/login"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h := newTestHandler(t, tc.base, web.WithStore(historytest.NewMockStore(ctrl)))
			w := httptest.NewRecorder()
			r := withVisitor(httptest.NewRequest(http.MethodGet, tc.target, nil), visitor)

			// Act
			h.Page(w, r)

			// Assert
			require.Equal(t, http.StatusMovedPermanently, w.Code)
			require.Equal(t, tc.expected, w.Header().Get("Location"))
		})
	}
}

func TestHandlerPageNoRedirect(t *testing.T) {
	tcs := []struct {
		name   string
		method string
		target string
		code   int
	}{
		{"Post-Trailing-Slash", http.MethodPost, "/app/search/", http.StatusOK},
		{"Outside-Base", http.MethodGet, "/login/", http.StatusNotFound},
		{"Canonical", http.MethodGet, "/app/login", http.StatusOK},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			h := newTestHandler(t, "/app")
			w := httptest.NewRecorder()
			r := withVisitor(httptest.NewRequest(tc.method, tc.target, nil), visitor)

			// Act
			h.Page(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Empty(t, w.Header().Get("Location"))
		})
	}
}

func TestHandlerPageHistory(t *testing.T) {
	// Arrange
	store := history.NewMemoryStore(history.DefaultTTL)
	h := newTestHandler(t, "/app", web.WithStore(store))

	// Act
	for _, target := range []string{"/app/login", "/app/search", "/app/search", "/app/nope"} {
		w := httptest.NewRecorder()
		h.Page(w, withVisitor(httptest.NewRequest(http.MethodGet, target, nil), visitor))
	}

	// Assert
	s, err := store.Load(context.Background(), visitor)
	require.NoError(t, err)
	require.Equal(t, []string{"/app/login", "/app/search", "/app/nope"}, s.Entries)
	require.Equal(t, 2, s.Index)

	other, err := store.Load(context.Background(), "someone-else")
	require.NoError(t, err)
	require.Zero(t, other.Len())
}

func TestHandlerPageStoreFailure(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := historytest.NewMockStore(ctrl)
	store.EXPECT().Load(gomock.Any(), visitor).Return(nil, errors.New("store down"))

	h := newTestHandler(t, "", web.WithStore(store))
	w := httptest.NewRecorder()
	r := withVisitor(httptest.NewRequest(http.MethodGet, "/login", nil), visitor)

	// Act
	h.Page(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `data-view="login"`)
}

func TestHandlerNavigateStoreFailure(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := historytest.NewMockStore(ctrl)
	store.EXPECT().Load(gomock.Any(), visitor).Return(nil, errors.New("store down"))

	h := newTestHandler(t, "/app", web.WithStore(store))
	w := httptest.NewRecorder()
	r := withVisitor(httptest.NewRequest(http.MethodPost, "/app/api/navigate", strings.NewReader(`{"path":"/search"}`)), visitor)

	// Act
	h.Navigate(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var actual struct {
		Data web.LocationInfo `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&actual))
	require.Equal(t, "/app/search", actual.Data.Location)
}

type refreshCounter struct {
	session.Stub
	resets *int
}

func (s refreshCounter) ResetExpiry(http.ResponseWriter, *http.Request) error {
	*s.resets++
	return nil
}

func TestHandlerRefreshesSession(t *testing.T) {
	// Arrange
	var resets int
	h := newTestHandler(t, "/app", web.WithStore(history.NewMemoryStore(history.DefaultTTL)))
	w := httptest.NewRecorder()
	r := withVisitor(httptest.NewRequest(http.MethodPost, "/app/api/navigate", strings.NewReader(`{"path":"/login"}`)), visitor)
	r = r.WithContext(context.WithValue(r.Context(), trailhead.SessionKey, refreshCounter{resets: &resets}))

	// Act
	h.Navigate(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, resets)
}

func TestHandlerPageNoVisitor(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := historytest.NewMockStore(ctrl)
	h := newTestHandler(t, "", web.WithStore(store))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/register", nil)

	// Act
	h.Page(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `data-view="register"`)
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	e := new(envelope[T])
	require.NoError(t, json.NewDecoder(w.Body).Decode(e))
	return e.Data
}

func TestHandlerRoutes(t *testing.T) {
	// Arrange
	h := newTestHandler(t, "/app")
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/app/api/routes", nil)

	// Act
	h.Routes(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	actual := decode[struct {
		Base   string          `json:"base"`
		Routes []web.RouteInfo `json:"routes"`
	}](t, w)

	require.Equal(t, "/app", actual.Base)
	require.Equal(t, []web.RouteInfo{
		{Path: "/", View: route.ViewHome, URL: "/app/"},
		{Path: "/login", View: route.ViewLogin, URL: "/app/login"},
		{Path: "/register", View: route.ViewRegister, URL: "/app/register"},
		{Path: "/search", View: route.ViewSearch, URL: "/app/search"},
	}, actual.Routes)
}

func TestHandlerResolve(t *testing.T) {
	tcs := []struct {
		name     string
		path     string
		code     int
		expected web.RouteInfo
	}{
		{"Login", "/login", http.StatusOK, web.RouteInfo{Path: "/login", View: route.ViewLogin, URL: "/app/login"}},
		{"Home", "/", http.StatusOK, web.RouteInfo{Path: "/", View: route.ViewHome, URL: "/app/"}},
		{"Unmatched", "/nonexistent", http.StatusNotFound, web.RouteInfo{View: route.ViewNotFound}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			h := newTestHandler(t, "/app")
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/app/api/resolve?path="+tc.path, nil)

			// Act
			h.Resolve(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.expected, decode[web.RouteInfo](t, w))
		})
	}

	t.Run("Not-A-Path", func(t *testing.T) {
		// Arrange
		h := newTestHandler(t, "")
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/resolve?path=login", nil)

		// Act
		h.Resolve(w, r)

		// Assert
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Equal(t, "path", decode[badRequest](t, w).ValidationErrors[0].Field)
	})
}

func TestHandlerNavigation(t *testing.T) {
	h := newTestHandler(t, "/app", web.WithStore(history.NewMemoryStore(history.DefaultTTL)))

	post := func(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/app/api", strings.NewReader(body))
		handler(w, withVisitor(r, visitor))
		return w
	}

	steps := []struct {
		name     string
		do       func() *httptest.ResponseRecorder
		code     int
		expected web.LocationInfo
	}{
		{
			name: "Fresh-Location",
			do: func() *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				h.Location(w, withVisitor(httptest.NewRequest(http.MethodGet, "/app/api/location", nil), visitor))
				return w
			},
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/", View: route.ViewNotFound},
		},
		{
			name:     "Navigate-Login",
			do:       func() *httptest.ResponseRecorder { return post(h.Navigate, `{"path":"/login"}`) },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/login", Path: "/login", View: route.ViewLogin},
		},
		{
			name:     "Navigate-Search",
			do:       func() *httptest.ResponseRecorder { return post(h.Navigate, `{"path":"/search"}`) },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/search", Path: "/search", View: route.ViewSearch, CanBack: true},
		},
		{
			name:     "Navigate-Unmatched",
			do:       func() *httptest.ResponseRecorder { return post(h.Navigate, `{"path":"/nonexistent"}`) },
			code:     http.StatusNotFound,
			expected: web.LocationInfo{Location: "/app/nonexistent", View: route.ViewNotFound, CanBack: true},
		},
		{
			name:     "Back",
			do:       func() *httptest.ResponseRecorder { return post(h.Back, "") },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/search", Path: "/search", View: route.ViewSearch, CanBack: true, CanForward: true},
		},
		{
			name:     "Replace",
			do:       func() *httptest.ResponseRecorder { return post(h.Replace, `{"path":"/register"}`) },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/register", Path: "/register", View: route.ViewRegister, CanBack: true, CanForward: true},
		},
		{
			name:     "Back-Again",
			do:       func() *httptest.ResponseRecorder { return post(h.Back, "") },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/login", Path: "/login", View: route.ViewLogin, CanForward: true},
		},
		{
			name:     "Back-At-Start",
			do:       func() *httptest.ResponseRecorder { return post(h.Back, "") },
			code:     http.StatusConflict,
			expected: web.LocationInfo{Location: "/app/login", Path: "/login", View: route.ViewLogin, CanForward: true},
		},
		{
			name:     "Forward",
			do:       func() *httptest.ResponseRecorder { return post(h.Forward, "") },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/register", Path: "/register", View: route.ViewRegister, CanBack: true, CanForward: true},
		},
		{
			name:     "Navigate-Truncates-Forward",
			do:       func() *httptest.ResponseRecorder { return post(h.Navigate, `{"path":"/"}`) },
			code:     http.StatusOK,
			expected: web.LocationInfo{Location: "/app/", Path: "/", View: route.ViewHome, CanBack: true},
		},
		{
			name:     "Forward-At-End",
			do:       func() *httptest.ResponseRecorder { return post(h.Forward, "") },
			code:     http.StatusConflict,
			expected: web.LocationInfo{Location: "/app/", Path: "/", View: route.ViewHome, CanBack: true},
		},
	}

	// NOTE: steps share the visitor's history, so they run in order
	for _, step := range steps {
		// Act
		w := step.do()

		// Assert
		require.Equal(t, step.code, w.Code, step.name)
		require.Equal(t, step.expected, decode[web.LocationInfo](t, w), step.name)
	}
}

type badRequest struct {
	Error            string                `json:"error"`
	ValidationErrors []req.ValidationError `json:"validationErrors"`
}

func TestHandlerNavigateBadRequest(t *testing.T) {
	tcs := []struct {
		name    string
		body    string
		err     error
		invalid []string
	}{
		{"Empty", "", trailhead.ErrBadFormat, nil},
		{"Not-JSON", "login", trailhead.ErrBadFormat, nil},
		{"Relative-Path", `{"path":"login"}`, trailhead.ErrNotValid, []string{"path"}},
		{"Other-Host", `{"path":"//evil.example/login"}`, trailhead.ErrNotValid, []string{"path"}},
		{"Missing-Path", `{}`, trailhead.ErrNotValid, []string{"path"}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h := newTestHandler(t, "", web.WithStore(historytest.NewMockStore(ctrl)))
			w := httptest.NewRecorder()
			r := withVisitor(httptest.NewRequest(http.MethodPost, "/api/navigate", strings.NewReader(tc.body)), visitor)

			// Act
			h.Navigate(w, r)

			// Assert
			require.Equal(t, http.StatusBadRequest, w.Code)

			actual := decode[badRequest](t, w)
			require.Contains(t, actual.Error, tc.err.Error())

			fields := make([]string, 0, len(actual.ValidationErrors))
			for _, ve := range actual.ValidationErrors {
				fields = append(fields, ve.Field)
			}
			require.ElementsMatch(t, tc.invalid, fields)
		})
	}
}

func TestHandlerPreflight(t *testing.T) {
	h := newTestHandler(t, "")
	w := httptest.NewRecorder()

	h.Preflight(w, httptest.NewRequest(http.MethodOptions, "/api/navigate", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
}
