/*
Package web serves the pages and the navigation API of a trailhead app.

Every request works on the navigation history of the visitor making it.
The history is loaded from a [history.Store] by the visitor ID the session carries,
a [navigator.Navigator] moves through it, and the history is saved again before responding.

Page requests mount the matched view by rendering its HTML shell.
API requests answer with the visitor's location as JSON
and leave mounting to the client.
*/
package web
