package graph

import (
	"math"

	"github.com/kjannette/quotegraph/internal/models"
)

const candleFill = 0.7

// CandlestickGraph draws OHLC candles scaled over the low/high range. Records
// without OHLC data become flat candles at the close.
type CandlestickGraph struct{}

func (CandlestickGraph) Kind() Kind { return KindCandlestick }

func (CandlestickGraph) Render(s models.Series, vp Viewport) (*Drawing, error) {
	if err := prepare(s, vp); err != nil {
		return nil, err
	}
	lo, hi, err := s.Range()
	if err != nil {
		return nil, err
	}
	sc := newScale(vp, lo, hi, len(s))

	d := &Drawing{Kind: KindCandlestick, Viewport: vp, Min: sc.min, Max: sc.max}
	d.Points = make([]Point, len(s))
	d.Candles = make([]Candle, len(s))
	for i, r := range s {
		left, w := sc.slot(i)
		cx := left + w/2
		bw := w * candleFill

		openY, closeY := sc.y(r.Open), sc.y(r.Close)
		top := math.Min(openY, closeY)

		d.Points[i] = Point{X: cx, Y: closeY}
		d.Candles[i] = Candle{
			WickTop:    Point{X: cx, Y: sc.y(r.High)},
			WickBottom: Point{X: cx, Y: sc.y(r.Low)},
			Body:       Rect{X: cx - bw/2, Y: top, Width: bw, Height: math.Abs(openY - closeY)},
			Rising:     r.Close >= r.Open,
		}
	}
	return d, nil
}
