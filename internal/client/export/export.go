// Package export stores downloaded attachments and reports outside the
// session: in the local download directory and, when configured, in an
// S3-compatible bucket.
package export

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
)

var ErrEmptyPayload = errors.New("empty payload")

// Sink persists a payload and returns where it went.
type Sink interface {
	Save(ctx context.Context, p *models.BinaryPayload) (string, error)
}

// Multi saves to every sink in order. A failing sink does not stop the
// others; all locations written and all errors are reported.
type Multi []Sink

func (m Multi) Save(ctx context.Context, p *models.BinaryPayload) (string, error) {
	var (
		locations []string
		errs      []error
	)
	for _, s := range m {
		loc, err := s.Save(ctx, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), errors.Join(errs...)
}
