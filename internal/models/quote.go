package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrEmptySeries is returned whenever a series with no records would be
// loaded or drawn.
var ErrEmptySeries = errors.New("empty series")

// Record is a single quote. Close is always present; OHLC reports whether the
// source carried open/high/low (close-only sources repeat the close there).
type Record struct {
	Time   time.Time `json:"t"`
	Open   float64   `json:"o"`
	High   float64   `json:"h"`
	Low    float64   `json:"l"`
	Close  float64   `json:"c"`
	Volume float64   `json:"v"`
	OHLC   bool      `json:"ohlc"`
}

// CloseOnly builds a record for sources that only provide a closing price.
func CloseOnly(ts time.Time, close float64) Record {
	return Record{Time: ts, Open: close, High: close, Low: close, Close: close}
}

// Series is an ordered sequence of records for one source, sorted by time.
type Series []Record

// Field selects which value of a record is used for scaling.
type Field int

const (
	FieldClose Field = iota
	FieldHigh
	FieldLow
)

func (r Record) value(f Field) float64 {
	switch f {
	case FieldHigh:
		return r.High
	case FieldLow:
		return r.Low
	default:
		return r.Close
	}
}

// Closes returns the closing prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, r := range s {
		out[i] = r.Close
	}
	return out
}

// Bounds returns the min and max of a field across the series. Non-finite
// values are ignored.
func (s Series) Bounds(f Field) (lo, hi float64, err error) {
	if len(s) == 0 {
		return 0, 0, ErrEmptySeries
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range s {
		v := r.value(f)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: no finite values", ErrEmptySeries)
	}
	return lo, hi, nil
}

// Range returns the lowest low and the highest high.
func (s Series) Range() (lo, hi float64, err error) {
	if lo, _, err = s.Bounds(FieldLow); err != nil {
		return 0, 0, err
	}
	_, hi, err = s.Bounds(FieldHigh)
	return lo, hi, err
}

func (s Series) First() Record { return s[0] }
func (s Series) Last() Record  { return s[len(s)-1] }

// Validate checks the series invariants: non-empty, finite closes and
// strictly increasing timestamps.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, r := range s {
		if math.IsNaN(r.Close) || math.IsInf(r.Close, 0) {
			return fmt.Errorf("record %d: close is not finite", i)
		}
		if i > 0 && !r.Time.After(s[i-1].Time) {
			return fmt.Errorf("record %d: timestamp %s not after %s",
				i, r.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Normalize sorts records by time and drops duplicate timestamps, keeping the
// last occurrence. It returns the cleaned series and the number of dropped
// duplicates. The input slice is not modified.
func Normalize(in []Record) (Series, int) {
	if len(in) == 0 {
		return nil, 0
	}
	s := make(Series, len(in))
	copy(s, in)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })

	out := s[:1]
	dropped := 0
	for _, r := range s[1:] {
		if r.Time.Equal(out[len(out)-1].Time) {
			out[len(out)-1] = r
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}
