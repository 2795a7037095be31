package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/kjannette/quotegraph/internal/config"
	"github.com/kjannette/quotegraph/internal/db"
	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/models"
	"github.com/kjannette/quotegraph/internal/repository"
	"go.uber.org/zap"
)

// QuoteStore is the query surface SQLLoader needs; repository.QuoteRepo and
// repository.SQLiteQuoteRepo implement it.
type QuoteStore interface {
	Series(ctx context.Context, source string) ([]models.Record, error)
	Sources(ctx context.Context) ([]string, error)
	HasSource(ctx context.Context, source string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLLoader loads series from a quotes table.
type SQLLoader struct {
	name  string
	store QuoteStore
	err   error
	log   *zap.Logger
}

// NewPostgresLoader connects to PostgreSQL. Connection problems leave the
// loader in failed state; no queries are attempted.
func NewPostgresLoader(ctx context.Context, cfg config.DBConfig, timeout time.Duration, log *zap.Logger) *SQLLoader {
	l := &SQLLoader{name: "postgres", log: logx.OrNop(log).Named("loader")}
	if err := cfg.Validate(); err != nil {
		l.err = fmt.Errorf("%w: %w", ErrConnection, err)
		return l
	}
	rc := db.DefaultRetry
	rc.MaxAttempts = cfg.ConnectAttempts
	pool, err := db.ConnectRetry(ctx, cfg.DSN(), timeout, rc)
	if err != nil {
		l.err = fmt.Errorf("%w: %s:%d/%s: %w", ErrConnection, cfg.Host, cfg.Port, cfg.Name, err)
		return l
	}
	l.store = repository.NewQuoteRepo(pool)
	if l.checkDefault(ctx, cfg.DefaultSource) {
		l.log.Info("connected", zap.String("backend", l.name), zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	}
	return l
}

// NewSQLiteLoader opens an existing SQLite quotes database. The database must
// hold quotes for defaultSource, otherwise the loader is failed.
func NewSQLiteLoader(ctx context.Context, path, defaultSource string, log *zap.Logger) *SQLLoader {
	l := &SQLLoader{name: "sqlite", log: logx.OrNop(log).Named("loader")}
	conn, err := db.OpenSQLite(ctx, path)
	if err != nil {
		l.err = fmt.Errorf("%w: %w", ErrConnection, err)
		return l
	}
	l.store = repository.NewSQLiteQuoteRepo(conn)
	if l.checkDefault(ctx, defaultSource) {
		l.log.Info("opened", zap.String("backend", l.name), zap.String("path", path))
	}
	return l
}

// checkDefault fails the loader when the quotes table is missing or holds
// nothing for the default source, so that the next backend is tried.
func (l *SQLLoader) checkDefault(ctx context.Context, source string) bool {
	ok, err := l.store.HasSource(ctx, source)
	switch {
	case err != nil:
		l.err = fmt.Errorf("%w: %s: check default source %q: %w", ErrConnection, l.name, source, err)
	case !ok:
		l.err = fmt.Errorf("%w: %s: default source: %w: %q", ErrConnection, l.name, ErrSourceNotFound, source)
	}
	return l.err == nil
}

// NewSQLLoader wraps an already connected store.
func NewSQLLoader(name string, store QuoteStore, log *zap.Logger) *SQLLoader {
	return &SQLLoader{name: name, store: store, log: logx.OrNop(log).Named("loader")}
}

func (l *SQLLoader) Name() string { return l.name }
func (l *SQLLoader) Failed() bool { return l.err != nil }
func (l *SQLLoader) Err() error   { return l.err }

func (l *SQLLoader) Load(ctx context.Context, source string) (models.Series, error) {
	if l.store == nil {
		return nil, l.err
	}
	if l.err != nil {
		// A query failed earlier; only continue once the backend answers again.
		if err := l.store.Ping(ctx); err != nil {
			return nil, l.err
		}
		l.log.Info("backend reachable again", zap.String("backend", l.name))
		l.err = nil
	}
	if source == "" {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}

	recs, err := l.store.Series(ctx, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("load %s: %w", source, ctxErr)
		}
		l.err = fmt.Errorf("%w: query %s: %w", ErrConnection, source, err)
		return nil, l.err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}

	series, dropped := models.Normalize(recs)
	if dropped > 0 {
		l.log.Warn("dropped duplicate timestamps", zap.String("source", source), zap.Int("count", dropped))
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	l.log.Debug("loaded", zap.String("backend", l.name), zap.String("source", source), zap.Int("records", len(series)))
	return series, nil
}

func (l *SQLLoader) Sources(ctx context.Context) ([]string, error) {
	if l.store == nil {
		return nil, l.err
	}
	return l.store.Sources(ctx)
}

func (l *SQLLoader) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
