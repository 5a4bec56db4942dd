package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"TAPull/pkg/util"

	"github.com/spf13/cast"
)

// Canonical OHLCV column names.
const (
	ColDate   = "date"
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// RequiredColumns lists the columns every table must carry, in canonical order.
var RequiredColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// priceAliases maps the API's *_price names onto canonical names. volume has no alias.
var priceAliases = map[string]string{
	"open_price":  ColOpen,
	"high_price":  ColHigh,
	"low_price":   ColLow,
	"close_price": ColClose,
}

// Bar is one trading period.
type Bar struct {
	Date   time.Time // zero when the source row has no parseable date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	// Extra holds every non-OHLCV column verbatim, including the raw date.
	Extra map[string]any
}

// Table is an ordered OHLCV series for one symbol.
type Table struct {
	Symbol  string
	Columns []string // source column order after normalization
	Bars    []Bar
}

// NewTable normalizes column names and validates a frame into a typed table.
// It fails with *SchemaError when required columns are missing or a required
// cell is not numeric.
func NewTable(symbol string, f *Frame) (*Table, error) {
	if f.Empty() {
		return nil, ErrEmptyTable
	}

	cols, rename := normalizeColumns(f.Columns)
	if missing := missingColumns(cols); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	t := &Table{
		Symbol:  symbol,
		Columns: cols,
		Bars:    make([]Bar, 0, len(f.Records)),
	}
	for i, rec := range f.Records {
		bar, err := newBar(i, rec, rename)
		if err != nil {
			return nil, err
		}
		t.Bars = append(t.Bars, bar)
	}
	return t, nil
}

func normalizeColumns(src []string) ([]string, map[string]string) {
	present := make(map[string]struct{}, len(src))
	for _, c := range src {
		present[c] = struct{}{}
	}

	rename := make(map[string]string, len(src))
	cols := make([]string, 0, len(src))
	for _, c := range src {
		name := c
		if canon, ok := priceAliases[c]; ok {
			if _, clash := present[canon]; clash {
				// canonical column wins; the alias stays as a passthrough column
				rename[c] = c
				cols = append(cols, c)
				continue
			}
			name = canon
		}
		rename[c] = name
		cols = append(cols, name)
	}
	return cols, rename
}

// MissingRequired reports the required columns absent from cols once the
// *_price aliases are applied, in canonical order.
func MissingRequired(cols []string) []string {
	normalized, _ := normalizeColumns(cols)
	return missingColumns(normalized)
}

func missingColumns(cols []string) []string {
	have := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		have[c] = struct{}{}
	}
	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

func newBar(row int, rec Record, rename map[string]string) (Bar, error) {
	b := Bar{Extra: make(map[string]any)}
	seen := 0
	for key, raw := range rec {
		name, ok := rename[key]
		if !ok {
			name = key
		}
		var dst *float64
		switch name {
		case ColOpen:
			dst = &b.Open
		case ColHigh:
			dst = &b.High
		case ColLow:
			dst = &b.Low
		case ColClose:
			dst = &b.Close
		case ColVolume:
			dst = &b.Volume
		default:
			b.Extra[name] = raw
			if name == ColDate {
				if t, ok := parseDate(raw); ok {
					b.Date = t
				}
			}
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return Bar{}, &SchemaError{Column: name, Row: row, Value: raw}
		}
		*dst = v
		seen++
	}
	if seen < len(RequiredColumns) {
		// a row that lacks a column other rows carry
		return Bar{}, &SchemaError{Missing: missingInRow(rec, rename), Row: row}
	}
	return b, nil
}

func missingInRow(rec Record, rename map[string]string) []string {
	cols := make([]string, 0, len(rec))
	for k := range rec {
		if n, ok := rename[k]; ok {
			cols = append(cols, n)
		} else {
			cols = append(cols, k)
		}
	}
	return missingColumns(cols)
}

// parseDate accepts date strings and numeric unix seconds.
func parseDate(raw any) (time.Time, bool) {
	switch d := raw.(type) {
	case string:
		return util.ParseTime(d)
	case json.Number:
		return util.ParseTime(d.String())
	case float64:
		return util.ParseTime(strconv.FormatFloat(d, 'f', -1, 64))
	case int, int64:
		return util.ParseTime(fmt.Sprint(d))
	default:
		return time.Time{}, false
	}
}

func toFloat(v any) (float64, error) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case nil, bool:
		return 0, fmt.Errorf("not numeric: %v", v)
	case json.Number:
		f, err = n.Float64()
	default:
		f, err = cast.ToFloat64E(v)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite: %v", v)
	}
	return f, nil
}

// Len returns the number of bars.
func (t *Table) Len() int { return len(t.Bars) }

// Closes returns the close series.
func (t *Table) Closes() []float64 {
	return t.series(func(b Bar) float64 { return b.Close })
}

// Highs returns the high series.
func (t *Table) Highs() []float64 {
	return t.series(func(b Bar) float64 { return b.High })
}

// Lows returns the low series.
func (t *Table) Lows() []float64 {
	return t.series(func(b Bar) float64 { return b.Low })
}

// Volumes returns the volume series.
func (t *Table) Volumes() []float64 {
	return t.series(func(b Bar) float64 { return b.Volume })
}

func (t *Table) series(get func(Bar) float64) []float64 {
	out := make([]float64, len(t.Bars))
	for i, b := range t.Bars {
		out[i] = get(b)
	}
	return out
}

// Cell returns the value of an original column at row i.
func (t *Table) Cell(i int, col string) any {
	b := t.Bars[i]
	switch col {
	case ColOpen:
		return b.Open
	case ColHigh:
		return b.High
	case ColLow:
		return b.Low
	case ColClose:
		return b.Close
	case ColVolume:
		return b.Volume
	default:
		return b.Extra[col]
	}
}

// Dated reports whether every bar carries a parsed date.
func (t *Table) Dated() bool {
	if len(t.Bars) == 0 {
		return false
	}
	for _, b := range t.Bars {
		if b.Date.IsZero() {
			return false
		}
	}
	return true
}

// FirstUnordered returns the index of the first bar dated before its predecessor, or -1.
func (t *Table) FirstUnordered() int {
	for i := 1; i < len(t.Bars); i++ {
		if t.Bars[i].Date.Before(t.Bars[i-1].Date) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy. Extra values are copied one level deep.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Symbol:  t.Symbol,
		Columns: append([]string(nil), t.Columns...),
		Bars:    make([]Bar, len(t.Bars)),
	}
	for i, b := range t.Bars {
		nb := b
		if b.Extra != nil {
			nb.Extra = make(map[string]any, len(b.Extra))
			for k, v := range b.Extra {
				nb.Extra[k] = v
			}
		}
		out.Bars[i] = nb
	}
	return out
}
