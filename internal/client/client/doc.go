// Package client contains the transport layer of the ECO client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     authentication, the ECO list/detail/transition endpoints, attachments,
//     reports and account administration.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that attaches the
//     session token, stamps every request with an X-Request-ID, enforces a
//     per-request timeout and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     session database, wiring SQLite and embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrTimeout, ErrUnauthorized, ErrInvalidCredentials,
// ErrValidation, ErrNotFound, ErrServer, ErrMalformedResponse.
// Responses carrying a server message are returned as *APIError, which
// unwraps to one of the sentinels and whose Error() is the server's detail
// text verbatim.
//
// A 401 on any authenticated request invalidates the session through the
// Credentials hook before the error is returned, so callers never observe
// the failure while still holding the dead token.
package client
