// Package session owns the authenticated identity of the client.
//
// A Store holds the current token, username and role, supplies the auth
// header for the API client (it implements client.Credentials) and is the
// single place where a session ends: on explicit logout, on local token
// expiry, or when the server answers 401. Invalidation observers are
// notified at most once per session so the UI returns to authentication
// exactly once.
//
// When constructed with a database the session is persisted in the
// metadata table and can be restored on the next start.
package session
