// Package controllers holds the client-side orchestration between the
// CLI and the API client.
//
//   - ListController keeps the ECO list consistent under debounced search,
//     filter and paging changes. Responses for a query that is no longer
//     current are dropped.
//   - DetailController owns the selected ECO snapshot, offers the legal
//     actions for it and reloads after every successful mutation.
//   - AttachmentGateway moves attachment and report bytes.
//   - AdminController lists, creates and deletes accounts.
//
// Controllers guard their own state with a mutex and never hold it across
// a network call.
package controllers
