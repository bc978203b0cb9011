package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
)

type EcoAPI interface {
	GetEco(ctx context.Context, id int64) (*models.Eco, error)
	CreateEco(ctx context.Context, in models.EcoInput) (int64, error)
	UpdateEco(ctx context.Context, id int64, in models.EcoInput) error
	DeleteEco(ctx context.Context, id int64) error
	Transition(ctx context.Context, id int64, action workflow.Action, comment string) error
}

// DetailController owns the selected ECO. Its snapshot only ever changes
// by a successful Load; mutations never patch it locally.
type DetailController struct {
	api      EcoAPI
	identity Identity
	logger   logging.Logger

	mu       sync.Mutex
	selected int64
	eco      *models.Eco
}

func NewDetailController(api EcoAPI, identity Identity, logger logging.Logger) *DetailController {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DetailController{api: api, identity: identity, logger: logger}
}

// Load fetches id and makes it the selection. On failure the previous
// snapshot stays as it was. A 403, 404 or rejected id yields ErrNotFound;
// transport, server and decoding failures keep their own sentinels
// (ErrUnavailable, ErrTimeout, ErrServer, ErrMalformedResponse).
func (c *DetailController) Load(ctx context.Context, id int64) (*models.Eco, error) {
	eco, err := c.api.GetEco(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrValidation) {
			err = fmt.Errorf("%w: %w", client.ErrNotFound, err)
		}
		return nil, err
	}

	c.mu.Lock()
	c.selected = eco.ID
	c.eco = eco
	c.mu.Unlock()

	return eco.Clone(), nil
}

func (c *DetailController) Refresh(ctx context.Context) (*models.Eco, error) {
	id, ok := c.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	return c.Load(ctx, id)
}

func (c *DetailController) Selected() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != 0
}

// Snapshot returns a copy of the displayed ECO, or nil when nothing is
// loaded or the last reload failed.
func (c *DetailController) Snapshot() *models.Eco {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eco == nil {
		return nil
	}
	return c.eco.Clone()
}

func (c *DetailController) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = 0
	c.eco = nil
}

// Actions is the legal action set for the displayed ECO and current role.
func (c *DetailController) Actions() workflow.ActionSet {
	c.mu.Lock()
	eco := c.eco
	c.mu.Unlock()

	if eco == nil {
		return workflow.ActionSet{}
	}
	set, err := workflow.LegalActions(eco.Status, c.identity.Current().IsAdmin)
	if err != nil {
		return workflow.ActionSet{}
	}
	return set
}

// Perform runs a status transition on the displayed ECO and reloads it.
func (c *DetailController) Perform(ctx context.Context, id int64, action workflow.Action, comment string) error {
	if !action.IsTransition() {
		return fmt.Errorf("%w: %s is not a transition", ErrIllegalAction, action)
	}
	if err := c.checkLegal(id, action); err != nil {
		return err
	}
	if err := workflow.CheckComment(action, comment); err != nil {
		return ErrCommentRequired
	}

	comment = strings.TrimSpace(comment)
	if err := c.api.Transition(ctx, id, action, comment); err != nil {
		c.logger.Warn(ctx, "transition refused", "eco", id, "action", string(action), "error", err)
		return &ActionError{Action: action, EcoID: id, Err: err}
	}
	c.logger.Info(ctx, "transition done", "eco", id, "action", string(action))

	return c.reload(ctx, id, action)
}

// Edit replaces title and description. Admin only.
func (c *DetailController) Edit(ctx context.Context, id int64, title, description string) error {
	if err := c.checkLegal(id, workflow.ActionEdit); err != nil {
		return err
	}

	in := models.EcoInput{Title: strings.TrimSpace(title), Description: description}
	if err := c.api.UpdateEco(ctx, id, in); err != nil {
		return &ActionError{Action: workflow.ActionEdit, EcoID: id, Err: err}
	}
	return c.reload(ctx, id, workflow.ActionEdit)
}

// Delete removes the ECO and drops the selection. Admin only.
func (c *DetailController) Delete(ctx context.Context, id int64) error {
	if err := c.checkLegal(id, workflow.ActionDelete); err != nil {
		return err
	}

	if err := c.api.DeleteEco(ctx, id); err != nil {
		return &ActionError{Action: workflow.ActionDelete, EcoID: id, Err: err}
	}
	c.logger.Info(ctx, "eco deleted", "eco", id)

	c.mu.Lock()
	if c.selected == id {
		c.selected = 0
		c.eco = nil
	}
	c.mu.Unlock()
	return nil
}

// Create files a new DRAFT ECO and selects it.
func (c *DetailController) Create(ctx context.Context, title, description string) (*models.Eco, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", client.ErrValidation)
	}

	id, err := c.api.CreateEco(ctx, models.EcoInput{Title: title, Description: description})
	if err != nil {
		return nil, err
	}
	c.logger.Info(ctx, "eco created", "eco", id)
	return c.Load(ctx, id)
}

func (c *DetailController) checkLegal(id int64, action workflow.Action) error {
	isAdmin := c.identity.Current().IsAdmin
	if (action == workflow.ActionEdit || action == workflow.ActionDelete) && !isAdmin {
		return ErrAdminOnly
	}

	c.mu.Lock()
	eco := c.eco
	c.mu.Unlock()

	if eco == nil || eco.ID != id {
		return fmt.Errorf("%w: eco %d is not loaded", ErrIllegalAction, id)
	}

	legal, err := workflow.LegalActions(eco.Status, isAdmin)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalAction, err)
	}
	if !legal.Has(action) {
		return fmt.Errorf("%w: %s on %s", ErrIllegalAction, action, eco.Status)
	}
	return nil
}

// reload fetches id after a mutation the server accepted. On failure the old
// snapshot no longer reflects the server, so it is dropped while the
// selection is kept for Refresh.
func (c *DetailController) reload(ctx context.Context, id int64, after workflow.Action) error {
	if _, err := c.Load(ctx, id); err != nil {
		c.mu.Lock()
		if c.eco != nil && c.eco.ID == id {
			c.eco = nil
		}
		c.mu.Unlock()
		c.logger.Warn(ctx, "reload after mutation failed", "eco", id, "action", string(after), "error", err)
		return fmt.Errorf("%w: %s on eco %d: %w", ErrReloadFailed, after, id, err)
	}
	return nil
}
