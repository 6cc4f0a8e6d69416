package route

import (
	"fmt"

	"github.com/xy-planning-network/trailhead"
)

// An UnmatchedRouteError reports a requested path that matches no declared Route.
//
// It is recoverable: callers render the not-found Route instead.
type UnmatchedRouteError struct {
	Path string
}

func (e *UnmatchedRouteError) Error() string {
	return fmt.Sprintf("no route matches %q", e.Path)
}

// Unwrap allows errors.Is(err, trailhead.ErrNotExist) to hold for an *UnmatchedRouteError.
func (e *UnmatchedRouteError) Unwrap() error { return trailhead.ErrNotExist }
