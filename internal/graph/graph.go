package graph

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kjannette/quotegraph/internal/models"
)

// FlatRangePadding widens a zero value range on both sides so that a
// constant series is drawn at mid-height.
const FlatRangePadding = 1.0

var (
	ErrInvalidViewport = errors.New("invalid viewport")
	ErrUnknownKind     = errors.New("unknown graph kind")
)

type Kind string

const (
	KindLine        Kind = "line"
	KindColumn      Kind = "column"
	KindCandlestick Kind = "candlestick"
)

// Kinds lists the available graph kinds in menu order.
var Kinds = []Kind{KindLine, KindColumn, KindCandlestick}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "":
		return KindLine, nil
	case "column", "bar":
		return KindColumn, nil
	case "candlestick", "candle", "ohlc":
		return KindCandlestick, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Renderer maps a series to drawable geometry. Implementations keep no state
// between calls.
type Renderer interface {
	Kind() Kind
	Render(s models.Series, vp Viewport) (*Drawing, error)
}

// New returns the renderer for a kind.
func New(k Kind) (Renderer, error) {
	switch k {
	case KindLine:
		return LineGraph{}, nil
	case KindColumn:
		return ColumnGraph{}, nil
	case KindCandlestick:
		return CandlestickGraph{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
}

// Viewport is the pixel area available for drawing.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (vp Viewport) Validate() error {
	if !(vp.Width > 0) || !(vp.Height > 0) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidViewport, vp.Width, vp.Height)
	}
	return nil
}

// Point is a pixel coordinate; y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Polyline []Point

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Candle is one OHLC shape: a wick from high to low and an open/close body.
type Candle struct {
	WickTop    Point `json:"wickTop"`
	WickBottom Point `json:"wickBottom"`
	Body       Rect  `json:"body"`
	Rising     bool  `json:"rising"`
}

// Drawing is the output of a render call.
type Drawing struct {
	Kind      Kind       `json:"kind"`
	Viewport  Viewport   `json:"viewport"`
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Points    []Point    `json:"points"`
	Polylines []Polyline `json:"polylines,omitempty"`
	Bars      []Rect     `json:"bars,omitempty"`
	Candles   []Candle   `json:"candles,omitempty"`
}

// scale maps values and indexes to pixels.
type scale struct {
	vp       Viewport
	min, max float64
	n        int
}

func newScale(vp Viewport, lo, hi float64, n int) scale {
	if lo == hi {
		lo -= FlatRangePadding
		hi += FlatRangePadding
	}
	return scale{vp: vp, min: lo, max: hi, n: n}
}

func (s scale) y(v float64) float64 {
	y := s.vp.Height - (v-s.min)/(s.max-s.min)*s.vp.Height
	return clamp(y, 0, s.vp.Height)
}

// x spreads indexes edge to edge; a single record sits in the middle.
func (s scale) x(i int) float64 {
	if s.n == 1 {
		return s.vp.Width / 2
	}
	return float64(i) * (s.vp.Width / float64(s.n-1))
}

// slot returns the left edge and width of the i-th equal slot.
func (s scale) slot(i int) (left, width float64) {
	width = s.vp.Width / float64(s.n)
	return float64(i) * width, width
}

func prepare(s models.Series, vp Viewport) error {
	if len(s) == 0 {
		return models.ErrEmptySeries
	}
	return vp.Validate()
}

// clamp pins v into [lo, hi]; NaN lands on hi, the baseline for y.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return hi
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
