/*
The middleware package defines what a middleware is in trailhead and a set of basic middlewares.

The available middlewares are:
- Compress
- CORS
- ForceHTTPS
- Idempotent
- InjectIPAddress
- InjectSession
- LogRequest
- ProxyHeaders
- RateLimit
- ReportPanic
- RequestID

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.ReportPanic(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore, log),
	}
*/
package middleware
