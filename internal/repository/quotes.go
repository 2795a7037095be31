package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/quotegraph/internal/models"
)

type QuoteRepo struct {
	pool *pgxpool.Pool
}

func NewQuoteRepo(pool *pgxpool.Pool) *QuoteRepo {
	return &QuoteRepo{pool: pool}
}

// Series returns every quote of a source ordered by time. An unknown source
// yields an empty result, not an error.
func (r *QuoteRepo) Series(ctx context.Context, source string) ([]models.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ts, open, high, low, close, volume FROM quotes WHERE source = $1 ORDER BY ts ASC`,
		source,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuotes(rows, func(dest *time.Time) any { return dest })
}

// HasSource reports whether any quote of source is stored.
func (r *QuoteRepo) HasSource(ctx context.Context, source string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quotes WHERE source = $1)`, source,
	).Scan(&ok)
	return ok, err
}

func (r *QuoteRepo) Sources(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT source FROM quotes ORDER BY source ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

// Insert stores records for a source, replacing existing timestamps.
func (r *QuoteRepo) Insert(ctx context.Context, source string, recs []models.Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, q := range recs {
		open, high, low := ohlcArgs(q)
		_, err := tx.Exec(ctx,
			`INSERT INTO quotes (source, ts, open, high, low, close, volume)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (source, ts) DO UPDATE
			 SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
			     close = EXCLUDED.close, volume = EXCLUDED.volume`,
			source, q.Time, open, high, low, q.Close, volumeArg(q),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *QuoteRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *QuoteRepo) Close() error {
	r.pool.Close()
	return nil
}
