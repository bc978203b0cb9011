package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidEco = errors.New("invalid eco")

// EcoSummary is one row of the list endpoint.
type EcoSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

func (e EcoSummary) Validate() error {
	if e.ID < 1 {
		return fmt.Errorf("%w: id %d", ErrInvalidEco, e.ID)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEco, e.Status)
	}
	return nil
}

// Eco is the full snapshot of a change order. History and Attachments keep
// server order; nothing is reordered or deduplicated client-side.
type Eco struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	CreatedBy   string         `json:"created_by,omitempty"`
	CreatedAt   Timestamp      `json:"created_at"`
	UpdatedAt   Timestamp      `json:"updated_at"`
	Attachments []Attachment   `json:"attachments"`
	History     []HistoryEntry `json:"history"`
}

func (e *Eco) Validate() error {
	if e.ID < 1 {
		return fmt.Errorf("%w: id %d", ErrInvalidEco, e.ID)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEco, e.Status)
	}
	for i, a := range e.Attachments {
		if a.Filename == "" {
			return fmt.Errorf("%w: attachment %d has no filename", ErrInvalidEco, i)
		}
	}
	for i, h := range e.History {
		if h.Action == "" {
			return fmt.Errorf("%w: history entry %d has no action", ErrInvalidEco, i)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate a controller's snapshot.
func (e *Eco) Clone() *Eco {
	if e == nil {
		return nil
	}
	c := *e
	c.Attachments = append([]Attachment(nil), e.Attachments...)
	c.History = append([]HistoryEntry(nil), e.History...)
	return &c
}

// LastHistory returns the most recent audit entry, if any.
func (e *Eco) LastHistory() (HistoryEntry, bool) {
	if len(e.History) == 0 {
		return HistoryEntry{}, false
	}
	return e.History[len(e.History)-1], true
}

// Attachment identifies one uploaded file. Filename is the retrieval key.
type Attachment struct {
	ID         int64     `json:"id,omitempty"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type,omitempty"`
	Size       int64     `json:"file_size,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt Timestamp `json:"uploaded_at"`
}

// HistoryEntry is one immutable audit record.
//
// The server has named the actor both "performed_by" and "username". The
// former is canonical; when both are present and disagree the legacy value is
// kept in ActorAlias instead of being dropped.
type HistoryEntry struct {
	Action      string
	Actor       string
	ActorAlias  string
	PerformedAt Timestamp
	Comment     string
}

type historyWire struct {
	Action      string    `json:"action"`
	Comment     *string   `json:"comment"`
	PerformedAt Timestamp `json:"performed_at"`
	PerformedBy *string   `json:"performed_by,omitempty"`
	Username    *string   `json:"username,omitempty"`
}

func (h *HistoryEntry) UnmarshalJSON(b []byte) error {
	var w historyWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*h = HistoryEntry{Action: w.Action, PerformedAt: w.PerformedAt}
	if w.Comment != nil {
		h.Comment = *w.Comment
	}

	canonical, legacy := deref(w.PerformedBy), deref(w.Username)
	switch {
	case canonical != "":
		h.Actor = canonical
		if legacy != "" && legacy != canonical {
			h.ActorAlias = legacy
		}
	default:
		h.Actor = legacy
	}
	return nil
}

func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	w := historyWire{Action: h.Action, PerformedAt: h.PerformedAt, PerformedBy: &h.Actor}
	if h.Comment != "" {
		w.Comment = &h.Comment
	}
	if h.ActorAlias != "" {
		w.Username = &h.ActorAlias
	}
	return json.Marshal(w)
}

// Line renders the entry the way the detail view lists it.
func (h HistoryEntry) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s by %s at %s", h.Action, h.Actor, h.PerformedAt.Display())
	if h.Comment != "" {
		fmt.Fprintf(&b, " %q", h.Comment)
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// EcoInput is the body of create and edit requests.
type EcoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
