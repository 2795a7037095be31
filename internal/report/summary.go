package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kjannette/quotegraph/internal/controller"
	"github.com/kjannette/quotegraph/internal/loader"
	"github.com/kjannette/quotegraph/internal/models"
)

// Row summarizes one source. Err is set when the source could not be loaded.
type Row struct {
	Source    string
	Records   int
	Skipped   int
	First     time.Time
	Last      time.Time
	Min       float64
	Max       float64
	LastClose float64
	Change    float64 // percent, first close to last close
	Err       error
}

// reporter is implemented by loaders that know how many lines they skipped.
type reporter interface {
	LoadWithReport(ctx context.Context, source string) (*loader.LoadReport, error)
}

// Summarize loads every source once. Failures become rows, never errors.
func Summarize(ctx context.Context, l loader.Loader, sources []string) []Row {
	rows := make([]Row, 0, len(sources))
	for _, src := range sources {
		row := Row{Source: src}

		var (
			s   models.Series
			err error
		)
		if rep, ok := l.(reporter); ok {
			var lr *loader.LoadReport
			if lr, err = rep.LoadWithReport(ctx, src); err == nil {
				s, row.Skipped = lr.Series, len(lr.Skipped)
			}
		} else {
			s, err = l.Load(ctx, src)
		}
		if err != nil {
			row.Err = err
			rows = append(rows, row)
			continue
		}

		row.Records = len(s)
		row.First, row.Last = s.First().Time, s.Last().Time
		row.Min, row.Max, _ = s.Range()
		row.LastClose = s.Last().Close
		if first := s.First().Close; first != 0 {
			row.Change = (row.LastClose - first) / first * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// Write renders rows as a table.
func Write(w io.Writer, backend string, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Quotes (" + backend + ")")
	t.AppendHeader(table.Row{"Source", "Records", "Skipped", "First", "Last", "Min", "Max", "Last Close", "Change"})

	for _, r := range rows {
		if r.Err != nil {
			t.AppendRow(table.Row{
				r.Source, "-", "-", "-", "-", "-", "-", "-",
				text.FgRed.Sprint(controller.UserMessage(r.Err)),
			})
			continue
		}
		t.AppendRow(table.Row{
			r.Source,
			r.Records,
			r.Skipped,
			r.First.Format("2006-01-02"),
			r.Last.Format("2006-01-02"),
			fmt.Sprintf("%.2f", r.Min),
			fmt.Sprintf("%.2f", r.Max),
			fmt.Sprintf("%.2f", r.LastClose),
			formatChange(r.Change),
		})
	}
	t.Render()
}

func formatChange(pct float64) string {
	if pct >= 0 {
		return text.FgGreen.Sprintf("+%.2f%%", pct)
	}
	return text.FgRed.Sprintf("%.2f%%", pct)
}

// WriteSummary loads the sources and writes the table.
func WriteSummary(ctx context.Context, w io.Writer, l loader.Loader, sources []string) []Row {
	rows := Summarize(ctx, l, sources)
	Write(w, l.Name(), rows)
	return rows
}
