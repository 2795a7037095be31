package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kjannette/quotegraph/internal/models"
)

// SQLiteQuoteRepo reads the same quotes table from a SQLite file, where ts is
// stored as unix seconds.
type SQLiteQuoteRepo struct {
	db *sql.DB
}

func NewSQLiteQuoteRepo(db *sql.DB) *SQLiteQuoteRepo {
	return &SQLiteQuoteRepo{db: db}
}

func (r *SQLiteQuoteRepo) Series(ctx context.Context, source string) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ts, open, high, low, close, volume FROM quotes WHERE source = ? ORDER BY ts ASC`,
		source,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuotes(rows, func(dest *time.Time) any { return &unixTime{dest: dest} })
}

func (r *SQLiteQuoteRepo) HasSource(ctx context.Context, source string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM quotes WHERE source = ? LIMIT 1`, source,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *SQLiteQuoteRepo) Sources(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT source FROM quotes ORDER BY source ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (r *SQLiteQuoteRepo) Insert(ctx context.Context, source string, recs []models.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range recs {
		open, high, low := ohlcArgs(q)
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO quotes (source, ts, open, high, low, close, volume)
			 VALUES (?,?,?,?,?,?,?)`,
			source, q.Time.Unix(), open, high, low, q.Close, volumeArg(q),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteQuoteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteQuoteRepo) Close() error {
	return r.db.Close()
}

// unixTime scans an integer unix-seconds column into a time.Time.
type unixTime struct {
	dest *time.Time
}

func (u *unixTime) Scan(src any) error {
	var n sql.NullInt64
	if err := n.Scan(src); err != nil {
		return err
	}
	*u.dest = time.Unix(n.Int64, 0).UTC()
	return nil
}
