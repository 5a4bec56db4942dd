package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// Record is one loosely-typed row as returned by the stock API.
type Record map[string]any

// Frame is a decoded API payload: rows plus the column order in which keys first appeared.
type Frame struct {
	Columns []string
	Records []Record
}

// ErrNotArray is returned when a payload is not a JSON array of objects.
var ErrNotArray = errors.New("payload is not a JSON array of objects")

// DecodeFrame decodes a JSON array of objects, keeping key order of first appearance.
// A JSON null decodes to an empty frame.
func DecodeFrame(data []byte) (*Frame, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if tok == nil {
		return &Frame{}, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, ErrNotArray
	}

	f := &Frame{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, ErrNotArray
		}

		rec := Record{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("decode frame: %w", err)
			}
			key, ok := kt.(string)
			if !ok {
				return nil, ErrNotArray
			}
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, fmt.Errorf("decode frame value %q: %w", key, err)
			}
			rec[key] = v
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				f.Columns = append(f.Columns, key)
			}
		}
		// closing '}'
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode frame: %w", err)
		}
		f.Records = append(f.Records, rec)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode frame: trailing data after array")
	}
	return f, nil
}

// NewFrame builds a frame from in-memory records. Column order is the canonical
// wire order for known columns followed by the remaining keys alphabetically.
func NewFrame(records ...Record) *Frame {
	seen := make(map[string]struct{})
	cols := make([]string, 0, 8)
	for _, r := range records {
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	sort.SliceStable(cols, func(i, j int) bool {
		ri, rj := columnRank(cols[i]), columnRank(cols[j])
		if ri != rj {
			return ri < rj
		}
		return cols[i] < cols[j]
	})
	return &Frame{Columns: cols, Records: records}
}

// Empty reports whether the frame carries no usable rows.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Records) == 0 || len(f.Columns) == 0
}

var wireOrder = []string{
	"symbol", ColDate,
	ColOpen, "open_price",
	ColHigh, "high_price",
	ColLow, "low_price",
	ColClose, "close_price",
	"adjusted_close", ColVolume,
}

func columnRank(col string) int {
	for i, c := range wireOrder {
		if c == col {
			return i
		}
	}
	return len(wireOrder)
}

// MarshalJSON encodes the frame as an array of objects with keys in column order.
func (f *Frame) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range f.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		n := 0
		for _, col := range f.Columns {
			v, ok := rec[col]
			if !ok {
				continue
			}
			if n > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(col)
			val, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode frame value %q: %w", col, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(val)
			n++
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
