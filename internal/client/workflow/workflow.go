// Package workflow holds the ECO approval state machine as seen by the
// client: which actions a caller may offer for a given status and role, and
// where each transition leads. The server stays authoritative; this package
// only decides what to offer and what to refuse before a request is sent.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
)

// Action is an operation the detail view can offer.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
)

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrNotTransition  = errors.New("not a transition action")
	ErrInvalidFrom    = errors.New("action not allowed from status")
	ErrCommentMissing = errors.New("comment required")
)

// ParseAction accepts any letter case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionEdit, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// IsTransition reports whether a moves the ECO along the status graph.
func (a Action) IsTransition() bool {
	return a == ActionSubmit || a == ActionApprove || a == ActionReject
}

// RequiresComment is true only for reject.
func (a Action) RequiresComment() bool {
	return a == ActionReject
}

func (a Action) String() string { return string(a) }

// Transitions returns the status-driven actions offered from s.
func Transitions(s models.Status) ([]Action, error) {
	switch s {
	case models.StatusDraft:
		return []Action{ActionSubmit}, nil
	case models.StatusSubmitted:
		return []Action{ActionApprove, ActionReject}, nil
	case models.StatusApproved, models.StatusRejected:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStatus, s)
	}
}

// LegalActions is the full set offered to a caller: the status transitions,
// plus edit and delete for administrators at every status.
func LegalActions(s models.Status, isAdmin bool) (ActionSet, error) {
	transitions, err := Transitions(s)
	if err != nil {
		return nil, err
	}
	set := make(ActionSet, len(transitions)+2)
	for _, a := range transitions {
		set[a] = struct{}{}
	}
	if isAdmin {
		set[ActionEdit] = struct{}{}
		set[ActionDelete] = struct{}{}
	}
	return set, nil
}

// Next returns the status a transition leads to from s.
func Next(s models.Status, a Action) (models.Status, error) {
	if !a.IsTransition() {
		return "", fmt.Errorf("%w: %s", ErrNotTransition, a)
	}
	switch {
	case s == models.StatusDraft && a == ActionSubmit:
		return models.StatusSubmitted, nil
	case s == models.StatusSubmitted && a == ActionApprove:
		return models.StatusApproved, nil
	case s == models.StatusSubmitted && a == ActionReject:
		return models.StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %s from %s", ErrInvalidFrom, a, s)
}

// CheckComment refuses an empty (or blank) comment for actions that need one.
func CheckComment(a Action, comment string) error {
	if a.RequiresComment() && strings.TrimSpace(comment) == "" {
		return fmt.Errorf("%w for %s", ErrCommentMissing, a)
	}
	return nil
}
