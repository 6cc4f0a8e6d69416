/*
Package req parses the payloads of HTTP requests into structs.

It supports JSON-encoded bodies and query parameters.
In both cases, the struct's tags match keys in the payload to fields
("json" or "schema") and set the rules the data must meet ("validate").

Failures are translated to trailhead's sentinel errors,
so handlers treat issues the same way whatever the encoding:
ValidationErrors unwrap to trailhead.ErrNotValid,
malformed payloads wrap trailhead.ErrBadFormat
and mistakes in the struct itself wrap trailhead.ErrBadConfig.
*/
package req
