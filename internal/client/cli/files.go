package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ecoflow/internal/client/controllers"
	"github.com/dmitrijs2005/ecoflow/internal/filex"
)

// Upload attaches a local file to the selected ECO and reloads it.
func (a *App) Upload(ctx context.Context, path string) error {
	id, ok := a.detail.Selected()
	if !ok {
		return controllers.ErrNoSelection
	}
	if path == "" {
		return fmt.Errorf("usage: upload <path>")
	}

	if err := a.files.UploadFile(ctx, id, path); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Uploaded.")

	eco, err := a.detail.Refresh(ctx)
	if err != nil {
		return err
	}
	a.renderEco(eco, a.detail.Actions())
	return nil
}

// View downloads an attachment into a temp file, waits for the user and
// removes the file again.
func (a *App) View(ctx context.Context, name string) error {
	id, ok := a.detail.Selected()
	if !ok {
		return controllers.ErrNoSelection
	}
	if name == "" {
		return fmt.Errorf("usage: view <filename>")
	}

	p, err := a.files.FetchBinary(ctx, id, name)
	if err != nil {
		return err
	}

	path, release, err := filex.WriteTemp(p.Name, p.Data)
	if err != nil {
		return err
	}
	defer release()

	fmt.Fprintf(a.out, "%s (%s, %s) is available at %s\n", p.Name, p.ContentType, humanSize(int64(p.Size())), path)
	_, _ = GetSimpleText(a.reader, "Press Enter when done", a.out)
	return nil
}

// Save stores an attachment of the selected ECO through the export sinks.
func (a *App) Save(ctx context.Context, name string) error {
	id, ok := a.detail.Selected()
	if !ok {
		return controllers.ErrNoSelection
	}
	if name == "" {
		return fmt.Errorf("usage: save <filename>")
	}

	p, err := a.files.FetchBinary(ctx, id, name)
	if err != nil {
		return err
	}
	loc, err := a.sink.Save(ctx, p)
	if loc != "" {
		fmt.Fprintln(a.out, "Saved to", loc)
	}
	return err
}

// Report exports the selected ECO's markdown report.
func (a *App) Report(ctx context.Context) error {
	id, ok := a.detail.Selected()
	if !ok {
		return controllers.ErrNoSelection
	}

	p, err := a.files.FetchReport(ctx, id)
	if err != nil {
		return err
	}
	loc, err := a.sink.Save(ctx, p)
	if loc != "" {
		fmt.Fprintln(a.out, "Report saved to", loc)
	}
	return err
}
