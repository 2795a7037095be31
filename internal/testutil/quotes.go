package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kjannette/quotegraph/internal/models"
)

// Day returns midnight UTC of 2017-01-01 plus n days.
func Day(n int) time.Time {
	return time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// Rising returns n OHLC records with closes 100, 101, ...
func Rising(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.Record{
			Time: Day(i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000 + float64(i), OHLC: true,
		}
	}
	return out
}

// WriteQuoteFile writes records as date,open,high,low,close,volume lines plus
// any extra raw lines, and returns the file path.
func WriteQuoteFile(t *testing.T, dir, name string, recs []models.Record, extra ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,%g\n",
			r.Time.Format("2006-01-02"), r.Open, r.High, r.Low, r.Close, r.Volume)
	}
	for _, l := range extra {
		b.WriteString(l + "\n")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
