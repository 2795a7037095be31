package repository

import (
	"context"
	"fmt"

	"github.com/kjannette/quotegraph/internal/models"
)

// Importer is a quote store that accepts writes.
type Importer interface {
	Insert(ctx context.Context, source string, recs []models.Record) error
	Close() error
}

// SeriesSource yields a series per source name; loader.Loader satisfies it.
type SeriesSource interface {
	Load(ctx context.Context, source string) (models.Series, error)
}

type ImportResult struct {
	Source  string
	Records int
	Err     error
}

// ImportAll copies each source from src into dst. A failing source is
// reported and the remaining ones are still imported.
func ImportAll(ctx context.Context, dst Importer, src SeriesSource, sources []string) []ImportResult {
	out := make([]ImportResult, 0, len(sources))
	for _, name := range sources {
		res := ImportResult{Source: name}
		s, err := src.Load(ctx, name)
		if err != nil {
			res.Err = fmt.Errorf("load: %w", err)
		} else if err := dst.Insert(ctx, name, s); err != nil {
			res.Err = fmt.Errorf("insert: %w", err)
		} else {
			res.Records = len(s)
		}
		out = append(out, res)
	}
	return out
}
