package graph

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kjannette/quotegraph/internal/models"
)

var vp = Viewport{Width: 800, Height: 600}

func series(closes ...float64) models.Series {
	s := make(models.Series, len(closes))
	for i, c := range closes {
		s[i] = models.Record{
			Time: time.Date(2017, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Open: c - 1, High: c + 2, Low: c - 2, Close: c, OHLC: true,
		}
	}
	return s
}

func renderers() []Renderer {
	return []Renderer{LineGraph{}, ColumnGraph{}, CandlestickGraph{}}
}

func inViewport(p Point, vp Viewport) bool {
	return p.X >= 0 && p.X <= vp.Width && p.Y >= 0 && p.Y <= vp.Height &&
		!math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

func TestRender_PointCountAndBounds(t *testing.T) {
	inputs := []models.Series{
		series(5),
		series(1, 2),
		series(10, 3, 7, 12, 1, 9, 4),
		series(42, 42, 42),
	}
	for _, r := range renderers() {
		for _, s := range inputs {
			d, err := r.Render(s, vp)
			if err != nil {
				t.Fatalf("%s render of %d records: %v", r.Kind(), len(s), err)
			}
			if d.Kind != r.Kind() {
				t.Fatalf("kind mismatch: %s vs %s", d.Kind, r.Kind())
			}
			if len(d.Points) != len(s) {
				t.Fatalf("%s: %d points for %d records", r.Kind(), len(d.Points), len(s))
			}
			for _, p := range d.Points {
				if !inViewport(p, vp) {
					t.Fatalf("%s: point %+v outside viewport", r.Kind(), p)
				}
			}
			for _, b := range d.Bars {
				if !inViewport(Point{b.X, b.Y}, vp) || !inViewport(Point{b.X + b.Width, b.Y + b.Height}, vp) {
					t.Fatalf("%s: bar %+v outside viewport", r.Kind(), b)
				}
			}
			for _, c := range d.Candles {
				if !inViewport(c.WickTop, vp) || !inViewport(c.WickBottom, vp) ||
					!inViewport(Point{c.Body.X + c.Body.Width, c.Body.Y + c.Body.Height}, vp) {
					t.Fatalf("%s: candle %+v outside viewport", r.Kind(), c)
				}
			}
		}
	}
}

func TestRender_NonFiniteValuesStayInViewport(t *testing.T) {
	s := series(10, 20, 15, 12)
	s[1].High = math.NaN()
	s[2].Close = math.NaN()
	s[3].Low = math.Inf(-1)
	for _, r := range renderers() {
		d, err := r.Render(s, vp)
		if err != nil {
			t.Fatalf("%s: %v", r.Kind(), err)
		}
		if math.IsNaN(d.Min) || math.IsInf(d.Min, 0) || math.IsNaN(d.Max) || math.IsInf(d.Max, 0) {
			t.Fatalf("%s: non-finite range [%v, %v]", r.Kind(), d.Min, d.Max)
		}
		for _, p := range d.Points {
			if !inViewport(p, vp) {
				t.Fatalf("%s: point %+v outside viewport", r.Kind(), p)
			}
		}
		for _, c := range d.Candles {
			if !inViewport(c.WickTop, vp) || !inViewport(c.WickBottom, vp) ||
				!inViewport(Point{c.Body.X, c.Body.Y}, vp) {
				t.Fatalf("%s: candle %+v outside viewport", r.Kind(), c)
			}
		}
	}
	if got := clamp(math.NaN(), 0, 600); got != 600 {
		t.Fatalf("clamp(NaN) = %v", got)
	}
}

func TestRender_EmptySeries(t *testing.T) {
	for _, r := range renderers() {
		d, err := r.Render(nil, vp)
		if !errors.Is(err, models.ErrEmptySeries) {
			t.Fatalf("%s: expected ErrEmptySeries, got %v", r.Kind(), err)
		}
		if d != nil {
			t.Fatalf("%s: expected no drawing", r.Kind())
		}
	}
}

func TestRender_InvalidViewport(t *testing.T) {
	for _, bad := range []Viewport{{0, 600}, {800, 0}, {-1, -1}, {math.NaN(), 10}} {
		if _, err := (LineGraph{}).Render(series(1, 2), bad); !errors.Is(err, ErrInvalidViewport) {
			t.Fatalf("viewport %+v: expected ErrInvalidViewport, got %v", bad, err)
		}
	}
}

func TestLineGraph_SinglePoint(t *testing.T) {
	d, err := LineGraph{}.Render(series(7), vp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(d.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(d.Points))
	}
	if len(d.Polylines) != 0 {
		t.Fatalf("expected no line segments, got %d polylines", len(d.Polylines))
	}
	if d.Points[0].X != vp.Width/2 {
		t.Fatalf("single point should be centered, got x=%v", d.Points[0].X)
	}
}

func TestLineGraph_Scaling(t *testing.T) {
	d, err := LineGraph{}.Render(series(10, 20, 15), Viewport{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []Point{{0, 100}, {100, 0}, {200, 50}}
	for i, p := range d.Points {
		if p != want[i] {
			t.Fatalf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
	if len(d.Polylines) != 1 || len(d.Polylines[0]) != 3 {
		t.Fatalf("expected one polyline through 3 points, got %+v", d.Polylines)
	}
	if d.Min != 10 || d.Max != 20 {
		t.Fatalf("bounds = [%v, %v], want [10, 20]", d.Min, d.Max)
	}
}

func TestLineGraph_FlatSeries(t *testing.T) {
	d, err := LineGraph{}.Render(series(42, 42, 42, 42), vp)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, p := range d.Points {
		if p.Y != vp.Height/2 {
			t.Fatalf("expected mid-height y=%v, got %v", vp.Height/2, p.Y)
		}
	}
	if d.Min != 42-FlatRangePadding || d.Max != 42+FlatRangePadding {
		t.Fatalf("unexpected padded range [%v, %v]", d.Min, d.Max)
	}
}

func TestLineGraph_Pure(t *testing.T) {
	s := series(3, 1, 4, 1, 5)
	a, _ := LineGraph{}.Render(s, vp)
	b, _ := LineGraph{}.Render(s, vp)
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatal("rendering the same input twice differed")
		}
	}
}

func TestColumnGraph_Bars(t *testing.T) {
	d, err := ColumnGraph{}.Render(series(10, 20), Viewport{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(d.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(d.Bars))
	}
	if d.Bars[0].Height <= 0 {
		t.Fatal("the smallest bar should stay visible")
	}
	if d.Bars[1].Height != 100 || d.Bars[1].Y != 0 {
		t.Fatalf("tallest bar should span the viewport, got %+v", d.Bars[1])
	}
	if d.Bars[0].Width != 40 || d.Bars[0].X != 5 {
		t.Fatalf("unexpected bar geometry %+v", d.Bars[0])
	}
}

func TestCandlestickGraph_Candles(t *testing.T) {
	s := series(10, 20)
	s[1].Open = 22 // falling candle
	d, err := CandlestickGraph{}.Render(s, Viewport{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(d.Candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(d.Candles))
	}
	if !d.Candles[0].Rising || d.Candles[1].Rising {
		t.Fatalf("unexpected rising flags %v %v", d.Candles[0].Rising, d.Candles[1].Rising)
	}
	c := d.Candles[1]
	if c.WickTop.Y > c.Body.Y || c.WickBottom.Y < c.Body.Y+c.Body.Height {
		t.Fatalf("wick should enclose the body: %+v", c)
	}
	if d.Min != 8 || d.Max != 22 {
		t.Fatalf("expected low/high range [8, 22], got [%v, %v]", d.Min, d.Max)
	}
}

func TestParseKindAndNew(t *testing.T) {
	cases := map[string]Kind{
		"line": KindLine, "": KindLine, "Column": KindColumn, "bar": KindColumn,
		"candlestick": KindCandlestick, "ohlc": KindCandlestick,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
		r, err := New(got)
		if err != nil || r.Kind() != want {
			t.Fatalf("New(%v) = %v, %v", got, r, err)
		}
	}
	if _, err := ParseKind("pie"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := New("pie"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
