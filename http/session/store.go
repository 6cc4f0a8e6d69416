package session

import (
	"fmt"
	"net/http"

	"github.com/boj/redistore"
	gorilla "github.com/gorilla/sessions"
	"github.com/xy-planning-network/trailhead"
)

const defaultMaxAge = 86400 // 1 day

// A SessionStorer provides the methods for retrieving a Session.
type SessionStorer interface {
	GetSession(r *http.Request) (TrailheadSessionable, error)
}

// Service wraps a gorilla.Store and manages the keys for it.
type Service struct {
	// authentication key
	ak []byte

	// encryption key
	ek []byte

	// session name
	sn string

	env trailhead.Environment

	maxAge int

	store gorilla.Store
}

// Config holds the values needed for constructing a Service.
type Config struct {
	Env trailhead.Environment

	// SessionName is the name of the cookie holding the session.
	SessionName string

	// AuthKey is a hex-encoded key authenticating the cookie through HMAC.
	AuthKey string

	// EncryptKey is a hex-encoded key encrypting the cookie.
	EncryptKey string
}

func validateConfig(c Config) error {
	if err := c.Env.Valid(); err != nil {
		return fmt.Errorf("%w: Env %q is %s", trailhead.ErrBadConfig, c.Env, err)
	}

	if c.SessionName == "" {
		return fmt.Errorf("%w: SessionName cannot be %q", trailhead.ErrBadConfig, c.SessionName)
	}

	return nil
}

// NewStoreService initiates a Service with the provided Config and ServiceOpts.
//
// By default, a Service stores sessions in cookies.
// Use WithRedis to store them in Redis.
func NewStoreService(cfg Config, opts ...ServiceOpt) (Service, error) {
	if err := validateConfig(cfg); err != nil {
		return Service{}, err
	}

	s := Service{
		env:    cfg.Env,
		maxAge: defaultMaxAge,
		sn:     cfg.SessionName,
	}

	var err error
	s.ak, err = decodeKey(cfg.AuthKey, authKeySizes)
	if err == nil && s.ak == nil {
		err = fmt.Errorf("%w: no key", trailhead.ErrMissingData)
	}
	if err != nil {
		return Service{}, fmt.Errorf("%w: authentication key is not valid: %s", trailhead.ErrBadConfig, err)
	}

	s.ek, err = decodeKey(cfg.EncryptKey, encryptKeySizes)
	if err != nil {
		return Service{}, fmt.Errorf("%w: encryption key is not valid: %s", trailhead.ErrBadConfig, err)
	}

	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return Service{}, fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}
	}

	if s.store == nil {
		if err := WithCookie()(&s); err != nil {
			return Service{}, fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
		}
	}

	return s, nil
}

// GetSession retrieves the Session for the *http.Request.
func (s Service) GetSession(r *http.Request) (TrailheadSessionable, error) {
	session, err := s.store.Get(r, s.sn)
	if session == nil {
		return nil, err
	}

	return Session{s: session}, err
}

// A ServiceOpt configures the provided *Service, returning an error if unable to.
type ServiceOpt func(*Service) error

// WithCookie configures the Service to back session storage with cookies.
func WithCookie() ServiceOpt {
	return func(s *Service) error {
		var c *gorilla.CookieStore
		if len(s.ek) > 0 {
			c = gorilla.NewCookieStore(s.ak, s.ek)
		} else {
			c = gorilla.NewCookieStore(s.ak)
		}

		c.Options.Secure = !(s.env.IsDevelopment() || s.env.IsTesting())
		c.Options.HttpOnly = true
		c.Options.SameSite = http.SameSiteLaxMode
		c.MaxAge(s.maxAge)
		s.store = c
		return nil
	}
}

// WithMaxAge sets the number of seconds a session lives for.
func WithMaxAge(secs int) ServiceOpt {
	return func(s *Service) error {
		s.maxAge = secs
		return nil
	}
}

// WithRedis configures the Service to back session storage with Redis.
//
// To authenticate to the Redis server, provide pass, otherwise its zero-value is acceptable.
func WithRedis(uri, pass string) ServiceOpt {
	return func(s *Service) error {
		r, err := redistore.NewRediStore(10, "tcp", uri, pass, s.ak, s.ek)
		if err != nil {
			return fmt.Errorf("%w: failed initializing Redis: %s", trailhead.ErrBadConfig, err)
		}

		r.Options.Secure = !(s.env.IsDevelopment() || s.env.IsTesting())
		r.Options.HttpOnly = true
		r.SetMaxAge(s.maxAge)
		s.store = r
		return nil
	}
}

// WithStore configures the Service to back session storage with the provided gorilla.Store.
func WithStore(store gorilla.Store) ServiceOpt {
	return func(s *Service) error {
		if store == nil {
			return fmt.Errorf("%w: nil store", trailhead.ErrMissingData)
		}

		s.store = store
		return nil
	}
}
