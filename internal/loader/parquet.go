package loader

import (
	"fmt"
	"math"
	"time"

	"github.com/kjannette/quotegraph/internal/models"
	"github.com/parquet-go/parquet-go"
)

// ParquetQuote is the on-disk row layout of .parquet sources (the same column
// names as the crawler's bar exports).
type ParquetQuote struct {
	Timestamp int64   `parquet:"t"` // unix milliseconds
	Open      float64 `parquet:"o"`
	High      float64 `parquet:"h"`
	Low       float64 `parquet:"l"`
	Close     float64 `parquet:"c"`
	Volume    int64   `parquet:"v"`
}

// readParquet converts rows to records. Rows with non-finite prices or an
// inverted high/low range are skipped and reported like malformed text lines,
// numbered from 1.
func readParquet(path string) ([]models.Record, []*LineError, error) {
	rows, err := parquet.ReadFile[ParquetQuote](path)
	if err != nil {
		return nil, nil, err
	}
	var (
		out     = make([]models.Record, 0, len(rows))
		skipped []*LineError
	)
	for i, r := range rows {
		if err := r.check(); err != nil {
			skipped = append(skipped, &LineError{Line: i + 1, Text: fmt.Sprintf("%+v", r), Err: err})
			continue
		}
		ts := time.UnixMilli(r.Timestamp).UTC()
		rec := models.CloseOnly(ts, r.Close)
		if r.Open != 0 || r.High != 0 || r.Low != 0 {
			rec.Open, rec.High, rec.Low = r.Open, r.High, r.Low
			rec.OHLC = true
		}
		rec.Volume = float64(r.Volume)
		out = append(out, rec)
	}
	return out, skipped, nil
}

func (q ParquetQuote) check() error {
	for _, v := range []float64{q.Open, q.High, q.Low, q.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite price %v", v)
		}
	}
	if q.High < q.Low {
		return fmt.Errorf("high %.4f below low %.4f", q.High, q.Low)
	}
	return nil
}

// WriteParquet stores records in the ParquetQuote layout.
func WriteParquet(path string, recs []models.Record) error {
	rows := make([]ParquetQuote, len(recs))
	for i, r := range recs {
		rows[i] = ParquetQuote{
			Timestamp: r.Time.UnixMilli(),
			Close:     r.Close,
			Volume:    int64(r.Volume),
		}
		if r.OHLC {
			rows[i].Open, rows[i].High, rows[i].Low = r.Open, r.High, r.Low
		}
	}
	return parquet.WriteFile(path, rows)
}
