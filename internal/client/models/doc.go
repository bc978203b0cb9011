// Package models defines the client-side view of the ECO workflow entities
// exchanged with the remote API: change orders with their audit history and
// attachments, user accounts, sessions and binary payloads.
//
// Every type decodes from the API's snake_case JSON and validates itself at
// parse time; the HTTP client treats a failed Validate as a malformed
// response.
package models
