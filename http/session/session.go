package session

import (
	"net/http"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/sessions"
)

const (
	sessionKey        = "trailhead-session-gorilla" // used by Service
	visitorSessionKey = sessionKey + "-visitor"     // used by Session
)

// The Sessionable interface defines the basic operations on a session.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The VisitorSessionable interface defines the operations for identifying
// the browser a session belongs to.
type VisitorSessionable interface {
	VisitorID(w http.ResponseWriter, r *http.Request) (string, error)
}

type TrailheadSessionable interface {
	Sessionable
	VisitorSessionable
}

// Session wraps a *gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession wraps g.
func NewSession(g *gorilla.Session) TrailheadSessionable { return Session{s: g} }

// Delete expires the session.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// Get retrieves the value stored under key.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// ResetExpiry saves the session, pushing its expiry out by the configured max age.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores val under key and saves the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// VisitorID returns the identifier of the browser holding this session.
//
// The first call on a fresh session generates a new identifier and saves it.
func (s Session) VisitorID(w http.ResponseWriter, r *http.Request) (string, error) {
	if val, ok := s.s.Values[visitorSessionKey]; ok {
		id, ok := val.(string)
		if !ok || id == "" {
			return "", ErrNotValid
		}

		return id, nil
	}

	id := uuid.NewString()
	if err := s.Set(w, r, visitorSessionKey, id); err != nil {
		return "", err
	}

	return id, nil
}

var _ TrailheadSessionable = Stub{}

// Stub implements TrailheadSessionable for tests, always identifying the same visitor.
type Stub struct {
	ID string
}

func (s Stub) Delete(w http.ResponseWriter, r *http.Request) error      { return nil }
func (s Stub) Get(key string) any                                       { return nil }
func (s Stub) ResetExpiry(w http.ResponseWriter, r *http.Request) error { return nil }
func (s Stub) Save(w http.ResponseWriter, r *http.Request) error        { return nil }
func (s Stub) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	return nil
}

func (s Stub) VisitorID(w http.ResponseWriter, r *http.Request) (string, error) {
	if s.ID == "" {
		return "", ErrNoVisitor
	}

	return s.ID, nil
}
