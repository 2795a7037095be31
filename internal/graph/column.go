package graph

import "github.com/kjannette/quotegraph/internal/models"

const (
	columnFill    = 0.8
	columnBasePad = 0.05
)

// ColumnGraph draws one bar per record, rising from the bottom edge to the
// close.
type ColumnGraph struct{}

func (ColumnGraph) Kind() Kind { return KindColumn }

func (ColumnGraph) Render(s models.Series, vp Viewport) (*Drawing, error) {
	if err := prepare(s, vp); err != nil {
		return nil, err
	}
	lo, hi, err := s.Bounds(models.FieldClose)
	if err != nil {
		return nil, err
	}
	// keep the smallest bar visible
	if span := hi - lo; span > 0 {
		lo -= span * columnBasePad
	}
	sc := newScale(vp, lo, hi, len(s))

	d := &Drawing{Kind: KindColumn, Viewport: vp, Min: sc.min, Max: sc.max}
	d.Points = make([]Point, len(s))
	d.Bars = make([]Rect, len(s))
	for i, r := range s {
		left, w := sc.slot(i)
		top := sc.y(r.Close)
		bw := w * columnFill
		d.Points[i] = Point{X: left + w/2, Y: top}
		d.Bars[i] = Rect{X: left + (w-bw)/2, Y: top, Width: bw, Height: vp.Height - top}
	}
	return d, nil
}
