package export

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/filex"
)

// FileSink writes payloads into Dir, created on first use.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(ctx context.Context, p *models.BinaryPayload) (string, error) {
	if p == nil {
		return "", ErrEmptyPayload
	}

	dir, err := filex.EnsureSubdDir(s.Dir)
	if err != nil {
		return "", fmt.Errorf("prepare download dir: %w", err)
	}
	return filex.SaveFile(dir, p.Name, p.Data)
}
