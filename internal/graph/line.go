package graph

import "github.com/kjannette/quotegraph/internal/models"

// LineGraph plots closing prices connected in series order.
type LineGraph struct{}

func (LineGraph) Kind() Kind { return KindLine }

func (LineGraph) Render(s models.Series, vp Viewport) (*Drawing, error) {
	if err := prepare(s, vp); err != nil {
		return nil, err
	}
	lo, hi, err := s.Bounds(models.FieldClose)
	if err != nil {
		return nil, err
	}
	sc := newScale(vp, lo, hi, len(s))

	pts := make([]Point, len(s))
	for i, r := range s {
		pts[i] = Point{X: sc.x(i), Y: sc.y(r.Close)}
	}

	d := &Drawing{Kind: KindLine, Viewport: vp, Min: sc.min, Max: sc.max, Points: pts}
	if len(pts) > 1 {
		d.Polylines = []Polyline{pts}
	}
	return d, nil
}
