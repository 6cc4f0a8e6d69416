package ranger

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/history"
	"github.com/xy-planning-network/trailhead/http/session"
	"github.com/xy-planning-network/trailhead/logger"
)

// A RangerOption configures the *Ranger under construction.
// Anything a RangerOption leaves unset is built from environment variables.
type RangerOption func(rng *Ranger) error

// WithContext exposes the provided context.Context to the trailhead app.
// The web server stops when ctx is done.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) error {
		if ctx == nil {
			return fmt.Errorf("%w: nil context", trailhead.ErrMissingData)
		}

		rng.ctx = ctx
		return nil
	}
}

// WithEnv sets the Environment instead of reading ENVIRONMENT.
func WithEnv(env trailhead.Environment) RangerOption {
	return func(rng *Ranger) error {
		if err := env.Valid(); err != nil {
			return fmt.Errorf("environment %q is %w", env, err)
		}

		rng.env = env
		return nil
	}
}

// WithBaseURL sets the root URL instead of reading BASE_URL.
// Its path is the base path every route is served under.
func WithBaseURL(u string) RangerOption {
	return func(rng *Ranger) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return err
		}

		rng.url = parsed
		return nil
	}
}

// WithHistoryStore keeps visitors' histories in s.
func WithHistoryStore(s history.Store) RangerOption {
	return func(rng *Ranger) error {
		rng.hist = s
		return nil
	}
}

// WithLogger sets the logger.Logger for the trailhead app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) error {
		rng.l = l
		return nil
	}
}

// WithServer uses srv as the web server; its Handler is overwritten.
func WithServer(srv *http.Server) RangerOption {
	return func(rng *Ranger) error {
		rng.srv = srv
		return nil
	}
}

// WithSessionStore sets the session.SessionStorer for the trailhead app.
func WithSessionStore(s session.SessionStorer) RangerOption {
	return func(rng *Ranger) error {
		rng.sessions = s
		return nil
	}
}

// WithStaticFS serves the bundled client from client and public assets from assets.
// Either can be nil to keep the default directory.
func WithStaticFS(client, assets fs.FS) RangerOption {
	return func(rng *Ranger) error {
		rng.client = client
		rng.assets = assets
		return nil
	}
}

// WithTemplateFS looks up templates in fsys before the ones trailhead embeds.
func WithTemplateFS(fsys fs.FS) RangerOption {
	return func(rng *Ranger) error {
		rng.tmpls = fsys
		return nil
	}
}
