package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/dmitrijs2005/ecoflow/internal/client/controllers"
	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
)

const titleWidth = 48

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	statusColors = map[models.Status]lipgloss.Color{
		models.StatusDraft:     lipgloss.Color("245"),
		models.StatusSubmitted: lipgloss.Color("214"),
		models.StatusApproved:  lipgloss.Color("42"),
		models.StatusRejected:  lipgloss.Color("196"),
	}
)

func statusBadge(s models.Status) string {
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := statusColors[s]; ok {
		style = style.Foreground(c)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

func (a *App) renderList(v controllers.ListView) {
	q := v.Query
	filter := "all"
	if q.Status != "" {
		filter = string(q.Status)
	}
	header := fmt.Sprintf("ECOs (status: %s", filter)
	if q.Search != "" {
		header += fmt.Sprintf(", search: %q", q.Search)
	}
	header += ")"
	fmt.Fprintln(a.out, headerStyle.Render(header))

	switch v.State {
	case controllers.ViewEmpty:
		fmt.Fprintln(a.out, dimStyle.Render("No ECOs found."))
	case controllers.ViewError:
		fmt.Fprintln(a.out, "Error:", v.Err)
	case controllers.ViewResults:
		fmt.Fprintf(a.out, "%6s  %s  %-11s  %-12s  %s\n", "ID", cell("TITLE", titleWidth), "STATUS", "CREATED BY", "CREATED")
		for _, e := range v.Items {
			fmt.Fprintf(a.out, "%6d  %s  %s  %s  %s\n",
				e.ID, cell(e.Title, titleWidth), statusBadge(e.Status)+strings.Repeat(" ", pad(e.Status)),
				cell(e.CreatedBy, 12), e.CreatedAt.Display())
		}
	}

	footer := fmt.Sprintf("Page %d, %d per page", q.PageIndex+1, q.PageSize)
	var nav []string
	if v.HasPrev {
		nav = append(nav, "prev")
	}
	if v.HasNext {
		nav = append(nav, "next")
	}
	if len(nav) > 0 {
		footer += " (" + strings.Join(nav, ", ") + ")"
	}
	fmt.Fprintln(a.out, dimStyle.Render(footer))
}

// pad aligns badges of different lengths in the status column.
func pad(s models.Status) int {
	if n := 11 - len(s) - 2; n > 0 {
		return n
	}
	return 0
}

func (a *App) renderEco(e *models.Eco, actions workflow.ActionSet) {
	if e == nil {
		return
	}
	fmt.Fprintf(a.out, "%s %s\n", headerStyle.Render(fmt.Sprintf("ECO #%d: %s", e.ID, e.Title)), statusBadge(e.Status))
	fmt.Fprintf(a.out, "Created by %s at %s, updated %s\n", orDash(e.CreatedBy), e.CreatedAt.Display(), e.UpdatedAt.Display())
	if e.Description != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, e.Description)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, headerStyle.Render("Attachments"))
	if len(e.Attachments) == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("  none"))
	}
	for _, at := range e.Attachments {
		line := "  " + at.Filename
		if at.Size > 0 {
			line += " (" + humanize.Bytes(uint64(at.Size)) + ")"
		}
		line += fmt.Sprintf(" by %s at %s", orDash(at.UploadedBy), at.UploadedAt.Display())
		fmt.Fprintln(a.out, line)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, headerStyle.Render("History"))
	if len(e.History) == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("  none"))
	}
	for _, h := range e.History {
		fmt.Fprintln(a.out, "  "+h.Line())
	}

	fmt.Fprintln(a.out)
	if sorted := actions.Sorted(); len(sorted) > 0 {
		names := make([]string, len(sorted))
		for i, act := range sorted {
			names[i] = string(act)
		}
		fmt.Fprintln(a.out, "Actions:", strings.Join(names, ", "))
	} else {
		fmt.Fprintln(a.out, dimStyle.Render("No actions available."))
	}
}

func (a *App) renderUsers(users []models.User) {
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("Users (%d)", len(users))))
	for _, u := range users {
		mark := " "
		if a.admin.Deletable(u) {
			mark = "x"
		}
		fmt.Fprintf(a.out, "%s %5d  %s  %s  %s  %s\n", mark, u.ID, cell(u.Username, 16), cell(u.FullName(), 24), cell(u.Email, 24), u.Role())
	}
	fmt.Fprintln(a.out, dimStyle.Render("x = can be deleted with 'deluser <id>'"))
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
