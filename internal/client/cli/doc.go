// Package cli provides the interactive ECO command-line client.
//
// It wires configuration, the session database, the API client and the
// controllers, then runs a REPL until the user exits. Typical flow: restore
// or prompt for a session, list and filter change orders, open one with
// show, and act on it.
//
// Key features:
//   - Register / Login / Logout, with the session restored on start
//   - Debounced search, status filter and paging over the ECO list
//   - ECO detail with history, legal actions and transitions
//   - Attachments: upload, view through a temp file, save
//   - Report export to the download directory and optionally S3
//   - Account administration for admins
//
// Whenever a command fails with client.ErrUnauthorized the REPL sends the
// user back to login. See App and runREPL for details.
package cli
