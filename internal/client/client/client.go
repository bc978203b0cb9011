package client

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
)

type Client interface {
	IssueToken(ctx context.Context, username, password string) (*models.TokenGrant, error)
	Register(ctx context.Context, user models.NewUser) error
	Ping(ctx context.Context) error

	ListEcos(ctx context.Context, params ListParams) ([]models.EcoSummary, error)
	GetEco(ctx context.Context, id int64) (*models.Eco, error)
	CreateEco(ctx context.Context, in models.EcoInput) (int64, error)
	UpdateEco(ctx context.Context, id int64, in models.EcoInput) error
	DeleteEco(ctx context.Context, id int64) error
	Transition(ctx context.Context, id int64, action workflow.Action, comment string) error

	UploadAttachment(ctx context.Context, id int64, filename string, r io.Reader) error
	DownloadAttachment(ctx context.Context, id int64, filename string) (*models.BinaryPayload, error)
	DownloadReport(ctx context.Context, id int64) (*models.BinaryPayload, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Credentials supplies the session token and is told when the server
// rejects it. Invalidate must be a no-op if token is no longer current.
type Credentials interface {
	Token() string
	Invalidate(ctx context.Context, token string) bool
}

// ListParams is one page request of the ECO list. Empty Search and Status
// are omitted from the query string.
type ListParams struct {
	Search string
	Status models.Status
	Limit  int
	Offset int
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	return v
}

// ReportName is the file name a report export is saved under.
func ReportName(id int64) string {
	return "eco_" + strconv.FormatInt(id, 10) + "_report.md"
}
