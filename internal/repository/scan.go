package repository

import (
	"time"

	"github.com/kjannette/quotegraph/internal/models"
)

// --- scan helpers ---

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// collectQuotes maps (ts, open, high, low, close, volume) rows to records.
// tsDest adapts the timestamp column to the driver's representation.
func collectQuotes(rows rowsIter, tsDest func(*time.Time) any) ([]models.Record, error) {
	var out []models.Record
	for rows.Next() {
		var (
			ts                      time.Time
			open, high, low, volume *float64
			closePrice              float64
		)
		if err := rows.Scan(tsDest(&ts), &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, err
		}
		out = append(out, toRecord(ts, open, high, low, closePrice, volume))
	}
	return out, rows.Err()
}

func toRecord(ts time.Time, open, high, low *float64, closePrice float64, volume *float64) models.Record {
	rec := models.CloseOnly(ts, closePrice)
	if open != nil && high != nil && low != nil {
		rec.Open, rec.High, rec.Low = *open, *high, *low
		rec.OHLC = true
	}
	if volume != nil {
		rec.Volume = *volume
	}
	return rec
}

func collectStrings(rows rowsIter) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func ohlcArgs(q models.Record) (open, high, low *float64) {
	if !q.OHLC {
		return nil, nil, nil
	}
	return &q.Open, &q.High, &q.Low
}

func volumeArg(q models.Record) *float64 {
	if q.Volume == 0 {
		return nil
	}
	return &q.Volume
}
