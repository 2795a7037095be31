package tui

import (
	"strconv"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/kjannette/quotegraph/internal/graph"
)

var (
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	risingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fallingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderChart paints a drawing into a w x h cell area. Drawing coordinates
// have y growing downwards, the chart canvas upwards.
func renderChart(d *graph.Drawing, w, h int) string {
	vp := d.Viewport
	yLabel := func(_ int, v float64) string {
		price := d.Min + (v/vp.Height)*(d.Max-d.Min)
		return strconv.FormatFloat(price, 'f', 2, 64)
	}
	noLabel := func(int, float64) string { return "" }

	lc := linechart.New(w, h,
		0, vp.Width,
		0, vp.Height,
		linechart.WithXYSteps(4, 4),
		linechart.WithXLabelFormatter(noLabel),
		linechart.WithYLabelFormatter(yLabel),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, lineStyle),
	)

	flip := func(p graph.Point) canvas.Float64Point {
		return canvas.Float64Point{X: p.X, Y: vp.Height - p.Y}
	}

	// horizontal distance between two braille dots
	pitch := vp.Width / float64(2*max(w, 1))

	switch d.Kind {
	case graph.KindColumn:
		for _, b := range d.Bars {
			x := b.X + b.Width/2
			lc.DrawBrailleLineWithStyle(
				flip(graph.Point{X: x, Y: b.Y + b.Height}),
				flip(graph.Point{X: x, Y: b.Y}),
				lineStyle)
		}
	case graph.KindCandlestick:
		for _, c := range d.Candles {
			st := fallingStyle
			if c.Rising {
				st = risingStyle
			}
			lc.DrawBrailleLineWithStyle(flip(c.WickBottom), flip(c.WickTop), st)
			drawBody(&lc, c.Body, flip, pitch, st)
		}
	default:
		for _, pl := range d.Polylines {
			for i := 1; i < len(pl); i++ {
				lc.DrawBrailleLineWithStyle(flip(pl[i-1]), flip(pl[i]), lineStyle)
			}
		}
		if len(d.Polylines) == 0 {
			for _, p := range d.Points {
				lc.DrawBrailleLineWithStyle(flip(p), flip(p), lineStyle)
			}
		}
	}

	lc.DrawXYAxisAndLabel()
	return lc.View()
}

// drawBody fills a candle body with vertical strokes one dot apart. A flat
// body becomes a horizontal stroke.
func drawBody(lc *linechart.Model, b graph.Rect, flip func(graph.Point) canvas.Float64Point, pitch float64, st lipgloss.Style) {
	if b.Height == 0 {
		lc.DrawBrailleLineWithStyle(
			flip(graph.Point{X: b.X, Y: b.Y}),
			flip(graph.Point{X: b.X + b.Width, Y: b.Y}),
			st)
		return
	}
	n := max(int(b.Width/pitch), 1)
	for i := 0; i <= n; i++ {
		x := b.X + b.Width*float64(i)/float64(n)
		lc.DrawBrailleLineWithStyle(
			flip(graph.Point{X: x, Y: b.Y + b.Height}),
			flip(graph.Point{X: x, Y: b.Y}),
			st)
	}
}
