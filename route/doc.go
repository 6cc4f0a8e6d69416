/*
Package route defines the table of paths a trailhead app answers to
and the views those paths mount.

A [Table] is an ordered, immutable list of [Route]s built once at startup with [NewTable] or [Default].
Resolving a path is a pure lookup: the base path the app is served from is stripped,
a single trailing slash is ignored, and the remainder must equal a Route's path exactly.

	t, _ := route.Default("/faces")
	r, ok := t.Resolve("/faces/login") // r.View == route.ViewLogin, ok == true

When nothing matches, [Table.Match] hands back the designated not-found Route
alongside an [*UnmatchedRouteError] so callers can render it and move on.
*/
package route
