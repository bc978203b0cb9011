package controllers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
)

type AttachmentAPI interface {
	UploadAttachment(ctx context.Context, id int64, filename string, r io.Reader) error
	DownloadAttachment(ctx context.Context, id int64, filename string) (*models.BinaryPayload, error)
	DownloadReport(ctx context.Context, id int64) (*models.BinaryPayload, error)
}

// AttachmentGateway only moves bytes. Size and type checks are the
// server's business.
type AttachmentGateway struct {
	api    AttachmentAPI
	logger logging.Logger
}

func NewAttachmentGateway(api AttachmentAPI, logger logging.Logger) *AttachmentGateway {
	if logger == nil {
		logger = logging.Discard()
	}
	return &AttachmentGateway{api: api, logger: logger}
}

func (g *AttachmentGateway) Upload(ctx context.Context, ecoID int64, name string, r io.Reader) error {
	if err := g.api.UploadAttachment(ctx, ecoID, name, r); err != nil {
		return err
	}
	g.logger.Info(ctx, "attachment uploaded", "eco", ecoID, "file", name)
	return nil
}

// UploadFile uploads a local file under its base name.
func (g *AttachmentGateway) UploadFile(ctx context.Context, ecoID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	return g.Upload(ctx, ecoID, filepath.Base(path), f)
}

func (g *AttachmentGateway) FetchBinary(ctx context.Context, ecoID int64, name string) (*models.BinaryPayload, error) {
	return g.api.DownloadAttachment(ctx, ecoID, name)
}

// FetchReport returns the markdown report named eco_<id>_report.md.
func (g *AttachmentGateway) FetchReport(ctx context.Context, ecoID int64) (*models.BinaryPayload, error) {
	return g.api.DownloadReport(ctx, ecoID)
}
