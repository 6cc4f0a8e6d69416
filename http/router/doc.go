/*
Package router defines how a trailhead app routes HTTP requests.

[*Router] is a thin wrapper around [mux.Router].
Everything it registers lives beneath a base path,
so one app can be served from a subdirectory of a host.

A [Route] pairs a path and an HTTP method with an [http.HandlerFunc].
Before a request gets to a handler,
the middlewares set by OnEveryRequest, then request logging,
then any middlewares passed to HandleRoutes, then those on the Route itself, are called in order.

Requests no Route matches, whether beneath the base path or not,
go to the handler set by HandleNotFound.
*/
package router
