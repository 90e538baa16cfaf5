// Package client is the HTTP transport used by the post board core.
//
// Requests are JSON (or form encoded for the login endpoint) and carry an
// X-Request-ID header. Session continuity relies entirely on the cookie the
// server sets: the Client keeps it in an in-memory jar and never writes it to
// disk. Non 2xx statuses are not errors at this layer; they are returned as a
// Response so the caller can classify them. Only failures where no response
// was received surface as *TransportError.
package client
