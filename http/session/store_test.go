package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/session"
)

var (
	authKey    = strings.Repeat("ab", 32)
	encryptKey = strings.Repeat("cd", 16)
)

func TestNewStoreService(t *testing.T) {
	tcs := []struct {
		name string
		cfg  session.Config
		err  error
	}{
		{
			name: "Bad-Env",
			cfg:  session.Config{Env: "nope", SessionName: "s", AuthKey: authKey},
			err:  trailhead.ErrBadConfig,
		},
		{
			name: "No-Name",
			cfg:  session.Config{Env: trailhead.Testing, AuthKey: authKey},
			err:  trailhead.ErrBadConfig,
		},
		{
			name: "No-Auth-Key",
			cfg:  session.Config{Env: trailhead.Testing, SessionName: "s"},
			err:  trailhead.ErrBadConfig,
		},
		{
			name: "Auth-Key-Not-Hex",
			cfg:  session.Config{Env: trailhead.Testing, SessionName: "s", AuthKey: "ðŸ˜…"},
			err:  trailhead.ErrBadConfig,
		},
		{
			name: "Encrypt-Key-Wrong-Size",
			cfg:  session.Config{Env: trailhead.Testing, SessionName: "s", AuthKey: authKey, EncryptKey: "ABCD"},
			err:  trailhead.ErrBadConfig,
		},
		{
			name: "Auth-Only",
			cfg:  session.Config{Env: trailhead.Testing, SessionName: "s", AuthKey: authKey},
		},
		{
			name: "Both-Keys",
			cfg:  session.Config{Env: trailhead.Testing, SessionName: "s", AuthKey: authKey, EncryptKey: encryptKey},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			svc, err := session.NewStoreService(tc.cfg)

			// Assert
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Zero(t, svc)
				return
			}

			require.NoError(t, err)
			require.NotZero(t, svc)
		})
	}
}

func TestServiceVisitorID(t *testing.T) {
	// Arrange
	svc, err := session.NewStoreService(session.Config{
		Env:         trailhead.Testing,
		SessionName: "trailhead",
		AuthKey:     authKey,
		EncryptKey:  encryptKey,
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	w := httptest.NewRecorder()

	// Act
	s, err := svc.GetSession(r)
	require.NoError(t, err)

	id, err := s.VisitorID(w, r)

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	// Arrange
	next := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	next.AddCookie(cookies[0])

	// Act
	s, err = svc.GetSession(next)
	require.NoError(t, err)

	again, err := s.VisitorID(httptest.NewRecorder(), next)

	// Assert
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestStub(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	w := httptest.NewRecorder()

	_, err := session.Stub{}.VisitorID(w, r)
	require.ErrorIs(t, err, session.ErrNoVisitor)

	id, err := session.Stub{ID: "abc"}.VisitorID(w, r)
	require.NoError(t, err)
	require.Equal(t, "abc", id)
}

func TestSessionExpiry(t *testing.T) {
	// Arrange
	svc, err := session.NewStoreService(session.Config{
		Env:         trailhead.Testing,
		SessionName: "trailhead",
		AuthKey:     authKey,
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	w := httptest.NewRecorder()
	s, err := svc.GetSession(r)
	require.NoError(t, err)

	id, err := s.VisitorID(w, r)
	require.NoError(t, err)
	cookie := w.Result().Cookies()[0]

	tcs := []struct {
		name   string
		do     func(session.TrailheadSessionable, http.ResponseWriter, *http.Request) error
		maxAge func(int) bool
	}{
		{"Reset-Expiry", session.TrailheadSessionable.ResetExpiry, func(age int) bool { return age > 0 }},
		{"Delete", session.TrailheadSessionable.Delete, func(age int) bool { return age < 0 }},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			next := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
			next.AddCookie(cookie)
			nw := httptest.NewRecorder()

			s, err := svc.GetSession(next)
			require.NoError(t, err)

			again, err := s.VisitorID(nw, next)
			require.NoError(t, err)
			require.Equal(t, id, again)

			// Act
			err = tc.do(s, nw, next)

			// Assert
			require.NoError(t, err)
			cookies := nw.Result().Cookies()
			require.Len(t, cookies, 1)
			require.Equal(t, "trailhead", cookies[0].Name)
			require.True(t, tc.maxAge(cookies[0].MaxAge))
		})
	}
}
