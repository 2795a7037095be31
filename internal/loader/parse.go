package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kjannette/quotegraph/internal/models"
)

// LineError describes a skipped input line.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() []error { return []error{ErrParse, e.Err} }

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02.01.2006",
	"02.01.2006 15:04:05",
}

// header names (English Yahoo-style and German exports) mapped to columns
var headerNames = map[string]string{
	"date": "date", "datum": "date", "time": "date", "timestamp": "date",
	"open": "open", "eröffnung": "open", "erster": "open",
	"high": "high", "hoch": "high",
	"low": "low", "tief": "low",
	"close": "close", "schluss": "close", "schlusskurs": "close", "letzter": "close",
	"volume": "volume", "volumen": "volume", "stücke": "volume",
}

type columns struct {
	date, open, high, low, close, volume int
}

func (c columns) hasOHLC() bool { return c.open >= 0 && c.high >= 0 && c.low >= 0 }

// positional layouts keyed by field count
var positional = map[int]columns{
	2: {date: 0, open: -1, high: -1, low: -1, close: 1, volume: -1},
	5: {date: 0, open: 1, high: 2, low: 3, close: 4, volume: -1},
	6: {date: 0, open: 1, high: 2, low: 3, close: 4, volume: 5},
	7: {date: 0, open: 1, high: 2, low: 3, close: 4, volume: 6}, // Date,Open,High,Low,Close,Adj Close,Volume
}

const maxLineLen = 1 << 20

var errLineTooLong = errors.New("line too long")

type format struct {
	delim rune // 0 means whitespace
	// decimalComma is latched by the first number holding a comma in a
	// semicolon separated file (German exports: 1.150,50).
	decimalComma bool
	header       *columns
}

func (f *format) split(line string) []string {
	var parts []string
	if f.delim == 0 {
		parts = strings.Fields(line)
		// "2017-01-02 10:00:00 ..." keeps date and time in one field
		if len(parts) > 1 {
			if _, err := time.Parse("15:04:05", parts[1]); err == nil {
				parts = append([]string{parts[0] + " " + parts[1]}, parts[2:]...)
			}
		}
	} else {
		parts = strings.Split(line, string(f.delim))
	}
	for i := range parts {
		parts[i] = strings.Trim(strings.TrimSpace(parts[i]), `"`)
	}
	return parts
}

func sniffFormat(line string) *format {
	switch {
	case strings.Contains(line, ";"):
		return &format{delim: ';'}
	case strings.Contains(line, ","):
		return &format{delim: ','}
	case strings.Contains(line, "\t"):
		return &format{delim: '\t'}
	default:
		return &format{}
	}
}

// parseHeader returns a column mapping when fields look like a header row.
func parseHeader(fields []string) (*columns, bool) {
	if _, err := parseDate(fields[0]); err == nil {
		return nil, false
	}
	c := columns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	known := 0
	for i, f := range fields {
		name, ok := headerNames[strings.ToLower(f)]
		if !ok {
			continue
		}
		known++
		switch name {
		case "date":
			c.date = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			if c.close < 0 {
				c.close = i
			}
		case "volume":
			c.volume = i
		}
	}
	if known == 0 || c.date < 0 || c.close < 0 {
		return nil, false
	}
	return &c, true
}

// ParseQuotes reads one record per line. Malformed lines are returned as
// LineErrors and skipped; only read errors abort parsing.
func ParseQuotes(r io.Reader) ([]models.Record, []*LineError, error) {
	var (
		recs    []models.Record
		skipped []*LineError
		fmtInfo *format
		lineNo  int
	)

	br := bufio.NewReader(r)
	for {
		raw, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if errors.Is(err, errLineTooLong) {
			skipped = append(skipped, &LineError{Line: lineNo, Text: raw, Err: err})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read: %w", err)
		}
		line := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if fmtInfo == nil {
			fmtInfo = sniffFormat(line)
			if cols, ok := parseHeader(fmtInfo.split(line)); ok {
				fmtInfo.header = cols
				continue
			}
		}

		rec, err := fmtInfo.parseLine(line)
		if err != nil {
			skipped = append(skipped, &LineError{Line: lineNo, Text: line, Err: err})
			continue
		}
		recs = append(recs, rec)
	}
	return recs, skipped, nil
}

// readLine returns the next line without its terminator. A line longer than
// maxLineLen is consumed up to its end and reported as errLineTooLong with
// only its beginning kept.
func readLine(br *bufio.Reader) (string, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong) {
				break
			}
			return "", err
		}
		switch {
		case tooLong:
		case len(buf)+len(chunk) > maxLineLen:
			tooLong = true
			buf = append(buf, chunk[:min(len(chunk), 64)]...)
			buf = buf[:min(len(buf), 64)]
		default:
			buf = append(buf, chunk...)
		}
		if !more {
			break
		}
	}
	if tooLong {
		return string(buf), errLineTooLong
	}
	return string(buf), nil
}

func (f *format) parseLine(line string) (models.Record, error) {
	fields := f.split(line)

	cols, ok := positional[len(fields)]
	if f.header != nil {
		cols, ok = *f.header, true
	}
	if !ok {
		return models.Record{}, fmt.Errorf("unexpected field count %d", len(fields))
	}

	get := func(i int) (float64, error) {
		if i >= len(fields) {
			return 0, fmt.Errorf("missing column %d", i+1)
		}
		return f.parseNumber(fields[i])
	}

	if cols.date >= len(fields) {
		return models.Record{}, errors.New("missing date")
	}
	ts, err := parseDate(fields[cols.date])
	if err != nil {
		return models.Record{}, err
	}
	closePrice, err := get(cols.close)
	if err != nil {
		return models.Record{}, fmt.Errorf("close: %w", err)
	}

	rec := models.CloseOnly(ts, closePrice)
	if cols.hasOHLC() {
		if rec.Open, err = get(cols.open); err != nil {
			return models.Record{}, fmt.Errorf("open: %w", err)
		}
		if rec.High, err = get(cols.high); err != nil {
			return models.Record{}, fmt.Errorf("high: %w", err)
		}
		if rec.Low, err = get(cols.low); err != nil {
			return models.Record{}, fmt.Errorf("low: %w", err)
		}
		if rec.High < rec.Low {
			return models.Record{}, fmt.Errorf("high %.4f below low %.4f", rec.High, rec.Low)
		}
		rec.OHLC = true
	}
	if cols.volume >= 0 {
		if rec.Volume, err = get(cols.volume); err != nil {
			return models.Record{}, fmt.Errorf("volume: %w", err)
		}
	}
	return rec, nil
}

func (f *format) parseNumber(s string) (float64, error) {
	if f.delim == ';' && strings.Contains(s, ",") {
		f.decimalComma = true
	}
	if f.decimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
