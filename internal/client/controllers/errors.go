package controllers

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
)

var (
	ErrActionRejected   = errors.New("action rejected")
	ErrIllegalAction    = errors.New("action not allowed")
	ErrCommentRequired  = errors.New("a comment is required to reject")
	ErrAdminOnly        = errors.New("admin privileges required")
	ErrNotConfirmed     = errors.New("not confirmed")
	ErrProtectedAccount = errors.New("admin accounts cannot be deleted")
	ErrNoSelection      = errors.New("no eco selected")
	ErrInvalidPageSize  = errors.New("page size must be positive")

	// ErrReloadFailed means the server applied the change but the follow-up
	// fetch failed. The snapshot is dropped until a refresh succeeds.
	ErrReloadFailed = errors.New("change applied, reload failed")
)

// ActionError is a mutation the server refused. Error is the server's
// message verbatim; it unwraps to ErrActionRejected and to the cause.
type ActionError struct {
	Action workflow.Action
	EcoID  int64
	Err    error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Action)
	}
	return e.Err.Error()
}

func (e *ActionError) Unwrap() []error {
	return []error{ErrActionRejected, e.Err}
}

// Identity exposes the current session to the controllers.
type Identity interface {
	Current() models.Session
}
