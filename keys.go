package trailhead

type Key string

const (
	// IpAddrKey stashes the IP address of an HTTP request being handled by trailhead.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"

	// VisitorIDKey stashes the unique UUID identifying the visitor a session belongs to.
	VisitorIDKey Key = "VisitorIDKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "trailhead context key: " + string(k)
}
