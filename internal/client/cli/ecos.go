package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/ecoflow/internal/client/controllers"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
)

func (a *App) List(ctx context.Context) error {
	a.list.Refresh(ctx)
	return a.showList()
}

// Search waits out the debounce window before the query goes out.
func (a *App) Search(ctx context.Context, text string) error {
	a.list.SetSearch(ctx, text)
	return a.showList()
}

func (a *App) Status(ctx context.Context, arg string) error {
	var status models.Status
	if arg != "" && !strings.EqualFold(arg, "all") {
		s, err := models.ParseStatus(strings.ToUpper(arg))
		if err != nil {
			return fmt.Errorf("usage: status <DRAFT|SUBMITTED|APPROVED|REJECTED|all>: %w", err)
		}
		status = s
	}
	if err := a.list.SetStatus(ctx, status); err != nil {
		return err
	}
	return a.showList()
}

func (a *App) PageSize(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("usage: pagesize <n>")
	}
	if err := a.list.SetPageSize(ctx, n); err != nil {
		return err
	}
	return a.showList()
}

func (a *App) Page(ctx context.Context, delta int) error {
	if !a.list.ChangePage(ctx, delta) {
		fmt.Fprintln(a.out, "Already on the last page.")
		return nil
	}
	return a.showList()
}

func (a *App) showList() error {
	a.list.Wait()
	v := a.list.Snapshot()
	if v.State == controllers.ViewError {
		return v.Err
	}
	a.renderList(v)
	return nil
}

func (a *App) Show(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return fmt.Errorf("usage: show <id>")
	}
	eco, err := a.detail.Load(ctx, id)
	if err != nil {
		return err
	}
	a.renderEco(eco, a.detail.Actions())
	return nil
}

func (a *App) Create(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	eco, err := a.detail.Create(ctx, title, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created ECO #%d\n", eco.ID)
	a.renderEco(eco, a.detail.Actions())
	return nil
}

// Transition runs submit, approve or reject on the selected ECO. Reject
// insists on a comment; the others offer an optional one.
func (a *App) Transition(ctx context.Context, action workflow.Action) error {
	id, ok := a.detail.Selected()
	if !ok {
		return controllers.ErrNoSelection
	}
	if !a.detail.Actions().Has(action) {
		return fmt.Errorf("%w: %s is not available for this ECO", controllers.ErrIllegalAction, action)
	}

	prompt := "Comment (optional)"
	if action.RequiresComment() {
		prompt = "Reason for rejection (required)"
	}
	comment, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	if err := a.detail.Perform(ctx, id, action, comment); err != nil {
		switch {
		case errors.Is(err, controllers.ErrCommentRequired):
			return fmt.Errorf("%w, nothing was sent", err)
		case errors.Is(err, controllers.ErrReloadFailed):
			fmt.Fprintf(a.out, "%s on ECO #%d went through, but it could not be reloaded; type 'show %d' to see it.\n", action, id, id)
		}
		return err
	}

	eco := a.detail.Snapshot()
	fmt.Fprintf(a.out, "ECO #%d is now %s\n", eco.ID, eco.Status)
	a.renderEco(eco, a.detail.Actions())
	return nil
}

// Edit replaces title and description; empty answers keep the current text.
func (a *App) Edit(ctx context.Context) error {
	eco := a.detail.Snapshot()
	if eco == nil {
		return controllers.ErrNoSelection
	}
	if !a.isAdmin() {
		return controllers.ErrAdminOnly
	}

	title, err := GetTextOr(a.reader, "Title", eco.Title, a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if description == "" {
		description = eco.Description
	}

	if err := a.detail.Edit(ctx, eco.ID, title, description); err != nil {
		if errors.Is(err, controllers.ErrReloadFailed) {
			fmt.Fprintf(a.out, "ECO #%d was saved, but it could not be reloaded; type 'show %d' to see it.\n", eco.ID, eco.ID)
		}
		return err
	}
	a.renderEco(a.detail.Snapshot(), a.detail.Actions())
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	eco := a.detail.Snapshot()
	if eco == nil {
		return controllers.ErrNoSelection
	}
	if !a.isAdmin() {
		return controllers.ErrAdminOnly
	}
	if !GetConfirmation(a.reader, fmt.Sprintf("Delete ECO #%d %q?", eco.ID, eco.Title), a.out) {
		return controllers.ErrNotConfirmed
	}

	if err := a.detail.Delete(ctx, eco.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "ECO #%d deleted.\n", eco.ID)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
