package graph

import (
	"io"
	"time"

	"github.com/kjannette/quotegraph/internal/models"
	chart "github.com/wcharczuk/go-chart/v2"
)

// EncodePNG renders the close prices of s as a PNG line chart of the
// viewport's size.
func EncodePNG(w io.Writer, title string, s models.Series, vp Viewport) error {
	if err := prepare(s, vp); err != nil {
		return err
	}
	lo, hi, err := s.Bounds(models.FieldClose)
	if err != nil {
		return err
	}
	if lo == hi {
		lo -= FlatRangePadding
		hi += FlatRangePadding
	}

	xs := make([]time.Time, len(s))
	for i, r := range s {
		xs[i] = r.Time
	}
	ys := s.Closes()
	// go-chart needs two x values to build a range
	if len(s) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	ch := chart.Chart{
		Title:  title,
		Width:  int(vp.Width),
		Height: int(vp.Height),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}
