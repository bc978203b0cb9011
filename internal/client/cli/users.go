package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ecoflow/internal/client/controllers"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
)

func (a *App) Users(ctx context.Context) error {
	users, err := a.admin.List(ctx)
	if err != nil {
		return err
	}
	a.renderUsers(users)
	return nil
}

func (a *App) AddUser(ctx context.Context) error {
	if !a.isAdmin() {
		return controllers.ErrAdminOnly
	}
	user, err := a.promptNewUser()
	if err != nil {
		return err
	}
	if err := a.admin.Create(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s created.\n", user.Username)
	a.renderUsers(a.admin.Users())
	return nil
}

func (a *App) DeleteUser(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return fmt.Errorf("usage: deluser <id>")
	}

	u, ok := a.admin.Find(id)
	if !ok {
		if _, err := a.admin.List(ctx); err != nil {
			return err
		}
		if u, ok = a.admin.Find(id); !ok {
			return fmt.Errorf("no user with id %d", id)
		}
	}

	err = a.admin.Delete(ctx, u, func(u models.User) bool {
		return GetConfirmation(a.reader, fmt.Sprintf("Delete user %s (#%d)?", u.Username, u.ID), a.out)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %s deleted.\n", u.Username)
	a.renderUsers(a.admin.Users())
	return nil
}
