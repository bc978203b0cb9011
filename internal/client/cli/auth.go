package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/shared"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Register prompts for the account fields and creates the account. It does
// not log in.
func (a *App) Register(ctx context.Context) error {
	user, err := a.promptNewUser()
	if err != nil {
		return err
	}
	if err := a.session.Register(ctx, user); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Success! You can now log in.")
	return nil
}

// Login prompts for credentials and opens a session. A wrong password and
// an unreachable server are reported distinctly; neither is retried.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	err = shared.WithSecret(password, func(pw string) error {
		_, err := a.session.Login(ctx, username, pw)
		return err
	})
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return fmt.Errorf("login failed: %w", err)
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, client.ErrTimeout):
		return fmt.Errorf("cannot reach the server: %w", err)
	case err != nil:
		return err
	}

	a.expired.Store(false)
	sess := a.session.Current()
	if sess.Username != a.owner {
		a.resetUserState()
		a.owner = sess.Username
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", sess.Username, roleName(sess.IsAdmin))

	a.list.Refresh(ctx)
	a.list.Wait()
	a.renderList(a.list.Snapshot())
	return nil
}

// Logout ends the session and forgets the selection.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.resetUserState()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Ping checks that the server is reachable.
func (a *App) Ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		return fmt.Errorf("server %s is not reachable: %w", a.config.ServerURL, err)
	}
	fmt.Fprintln(a.out, "Server is up.")
	return nil
}

func (a *App) promptNewUser() (models.NewUser, error) {
	var u models.NewUser
	var err error

	if u.Username, err = GetSimpleText(a.reader, "Enter username", a.out); err != nil {
		return u, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return u, err
	}
	u.Password = string(password)
	shared.WipeByteArray(password)

	if u.FirstName, err = GetSimpleText(a.reader, "First name (optional)", a.out); err != nil {
		return u, err
	}
	if u.LastName, err = GetSimpleText(a.reader, "Last name (optional)", a.out); err != nil {
		return u, err
	}
	if u.Email, err = GetSimpleText(a.reader, "Email (optional)", a.out); err != nil {
		return u, err
	}
	return u, nil
}

func roleName(admin bool) string {
	if admin {
		return "admin"
	}
	return "user"
}
