package loader

import (
	"context"
	"errors"

	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrConnection: the SQL backend could not be reached.
	ErrConnection = errors.New("database connection failed")
	// ErrFileNotFound: the file backend has no readable data directory or
	// default source file.
	ErrFileNotFound = errors.New("data file not found")
	// ErrParse marks a single malformed input line.
	ErrParse = errors.New("malformed line")
	// ErrSourceNotFound: the requested source does not exist in the backend.
	ErrSourceNotFound = errors.New("source not found")
	// ErrNoData: no backend in the fallback chain could be established.
	ErrNoData = errors.New("no data could be loaded")

	ErrEmptySeries = models.ErrEmptySeries
)

// Loader turns a source name into a series.
type Loader interface {
	// Name identifies the backend ("postgres", "sqlite", "file").
	Name() string
	Load(ctx context.Context, source string) (models.Series, error)
	// Failed reports that the backend itself is unusable. A missing source
	// does not fail the loader.
	Failed() bool
	// Err is the reason for Failed, nil otherwise.
	Err() error
	Close() error
}

// Lister is implemented by loaders that can enumerate their sources.
type Lister interface {
	Sources(ctx context.Context) ([]string, error)
}

// Factory constructs a loader; construction never panics and reports
// problems through Failed.
type Factory func(ctx context.Context) Loader

// Open tries factories in order and returns the first loader that has not
// failed. Failed loaders are closed. ErrNoData is returned when the list is
// exhausted.
func Open(ctx context.Context, log *zap.Logger, factories ...Factory) (Loader, error) {
	log = logx.OrNop(log).Named("loader")
	for _, f := range factories {
		if f == nil {
			continue
		}
		l := f(ctx)
		if l == nil {
			continue
		}
		if !l.Failed() {
			log.Info("using data backend", zap.String("backend", l.Name()))
			return l, nil
		}
		log.Warn("data backend unavailable, trying next",
			zap.String("backend", l.Name()), zap.Error(l.Err()))
		if err := l.Close(); err != nil {
			log.Debug("close failed backend", zap.String("backend", l.Name()), zap.Error(err))
		}
	}
	return nil, ErrNoData
}
