package controllers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
)

type UserAPI interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	Register(ctx context.Context, user models.NewUser) error
}

type AdminController struct {
	api      UserAPI
	identity Identity
	logger   logging.Logger

	mu    sync.Mutex
	users []models.User
}

func NewAdminController(api UserAPI, identity Identity, logger logging.Logger) *AdminController {
	if logger == nil {
		logger = logging.Discard()
	}
	return &AdminController{api: api, identity: identity, logger: logger}
}

func (c *AdminController) List(ctx context.Context) ([]models.User, error) {
	if !c.identity.Current().IsAdmin {
		return nil, ErrAdminOnly
	}

	users, err := c.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.users = users
	c.mu.Unlock()

	return c.Users(), nil
}

// Users is the last fetched listing.
func (c *AdminController) Users() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.User, len(c.users))
	copy(out, c.users)
	return out
}

// Reset forgets the cached listing, so Find misses until the next List.
func (c *AdminController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = nil
}

// Create registers an account. Field errors come back as the server's
// detail wrapped in client.ErrValidation.
func (c *AdminController) Create(ctx context.Context, user models.NewUser) error {
	if !c.identity.Current().IsAdmin {
		return ErrAdminOnly
	}
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.Password == "" {
		return fmt.Errorf("%w: username and password are required", client.ErrValidation)
	}

	if err := c.api.Register(ctx, user); err != nil {
		return err
	}
	c.logger.Info(ctx, "user created", "username", user.Username)

	c.refresh(ctx)
	return nil
}

// Deletable reports whether u may be offered for deletion.
func (c *AdminController) Deletable(u models.User) bool {
	return !bool(u.IsAdmin)
}

// Delete removes u after confirm approves it. Admin accounts are refused
// before asking.
func (c *AdminController) Delete(ctx context.Context, u models.User, confirm func(models.User) bool) error {
	if !c.identity.Current().IsAdmin {
		return ErrAdminOnly
	}
	if !c.Deletable(u) {
		return ErrProtectedAccount
	}
	if confirm == nil || !confirm(u) {
		return ErrNotConfirmed
	}

	if err := c.api.DeleteUser(ctx, u.ID); err != nil {
		return err
	}
	c.logger.Info(ctx, "user deleted", "id", u.ID, "username", u.Username)

	c.refresh(ctx)
	return nil
}

// Find returns the user with id from the last listing.
func (c *AdminController) Find(id int64) (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (c *AdminController) refresh(ctx context.Context) {
	if _, err := c.List(ctx); err != nil {
		c.logger.Warn(ctx, "user list refresh failed", "error", err)
	}
}
