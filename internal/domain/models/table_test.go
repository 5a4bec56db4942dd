package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suffixedPayload = `[
	{"symbol": "AAPL", "date": "2024-01-02", "open_price": 10, "high_price": 12, "low_price": 9, "close_price": 11, "adjusted_close": 11, "volume": 1000},
	{"symbol": "AAPL", "date": "2024-01-03", "open_price": "11", "high_price": 13, "low_price": 10.5, "close_price": 12.5, "adjusted_close": 12.5, "volume": 1200}
]`

func TestNewTable_NormalizesPriceSuffix(t *testing.T) {
	f, err := DecodeFrame([]byte(suffixedPayload))
	require.NoError(t, err)

	tbl, err := NewTable("AAPL", f)
	require.NoError(t, err)

	assert.Equal(t, []string{"symbol", "date", "open", "high", "low", "close", "adjusted_close", "volume"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []float64{11, 12.5}, tbl.Closes())
	assert.Equal(t, []float64{10, 11}, []float64{tbl.Bars[0].Open, tbl.Bars[1].Open})
	assert.Equal(t, []float64{1000, 1200}, tbl.Volumes())
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), tbl.Bars[1].Date)
	assert.Equal(t, json.Number("12.5"), tbl.Cell(1, "adjusted_close"))
	assert.Equal(t, "2024-01-02", tbl.Cell(0, ColDate))
	assert.True(t, tbl.Dated())
	assert.Equal(t, -1, tbl.FirstUnordered())
}

func TestNewTable_CanonicalWinsOverAlias(t *testing.T) {
	tbl, err := NewTable("X", NewFrame(Record{
		"open": 1, "high": 2, "low": 0.5, "close": 1.5, "close_price": 9, "volume": 3,
	}))
	require.NoError(t, err)
	assert.Equal(t, 1.5, tbl.Bars[0].Close)
	assert.Equal(t, 9, tbl.Cell(0, "close_price"))
	assert.Contains(t, tbl.Columns, "close_price")
}

func TestNewTable_MissingColumns(t *testing.T) {
	_, err := NewTable("X", NewFrame(Record{"open_price": 1, "close": 2}))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"high", "low", "volume"}, se.Missing)
	assert.Equal(t, "missing required columns: [high, low, volume]", se.Error())
}

func TestNewTable_RowMissingColumn(t *testing.T) {
	_, err := NewTable("X", NewFrame(
		Record{"open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
		Record{"open": 1, "high": 2, "low": 0.5, "close": 1.5},
	))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"volume"}, se.Missing)
	assert.Equal(t, 1, se.Row)
}

func TestNewTable_NonNumeric(t *testing.T) {
	for _, bad := range []any{"n/a", nil, true} {
		_, err := NewTable("X", NewFrame(Record{"open": 1, "high": 2, "low": 0.5, "close": bad, "volume": 3}))
		var se *SchemaError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "close", se.Column)
		assert.Equal(t, 0, se.Row)
	}
}

func TestNewTable_Empty(t *testing.T) {
	_, err := NewTable("X", &Frame{})
	assert.ErrorIs(t, err, ErrEmptyTable)
	_, err = NewTable("X", nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl, err := NewTable("X", NewFrame(Record{"date": "2024-01-01", "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3}))
	require.NoError(t, err)

	c := tbl.Clone()
	c.Bars[0].Close = 99
	c.Bars[0].Extra["date"] = "changed"
	c.Columns[0] = "changed"

	assert.Equal(t, 1.5, tbl.Bars[0].Close)
	assert.Equal(t, "2024-01-01", tbl.Bars[0].Extra["date"])
	assert.Equal(t, "date", tbl.Columns[0])
}

func TestTable_FirstUnordered(t *testing.T) {
	tbl := &Table{Bars: []Bar{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	assert.True(t, tbl.Dated())
	assert.Equal(t, 2, tbl.FirstUnordered())
}

func TestNewTable_NonFinite(t *testing.T) {
	recs := []Record{
		{"open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
		{"open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
		{"open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
	}
	for _, bad := range []any{"NaN", "Inf", "-Inf", math.NaN(), math.Inf(1)} {
		recs[2]["close"] = bad
		_, err := NewTable("X", NewFrame(recs...))
		var se *SchemaError
		require.ErrorAs(t, err, &se, "value %v", bad)
		assert.Equal(t, "close", se.Column)
		assert.Equal(t, 2, se.Row)
		if f, ok := bad.(float64); ok && math.IsNaN(f) {
			assert.True(t, math.IsNaN(se.Value.(float64)))
		} else {
			assert.Equal(t, bad, se.Value)
		}
	}
}

func TestNewTable_NumericDates(t *testing.T) {
	f, err := DecodeFrame([]byte(`[
		{"date": 1704067200, "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
		{"date": 1704153600, "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3}
	]`))
	require.NoError(t, err)
	tbl, err := NewTable("X", f)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1704067200, 0).UTC(), tbl.Bars[0].Date)
	assert.Equal(t, time.Unix(1704153600, 0).UTC(), tbl.Bars[1].Date)

	tbl, err = NewTable("X", NewFrame(
		Record{"date": float64(1704153600), "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
		Record{"date": float64(1704067200), "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 3},
	))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1704067200, 0).UTC(), tbl.Bars[1].Date)
	assert.True(t, tbl.Dated())
	assert.Equal(t, 1, tbl.FirstUnordered())
}

func TestMissingRequired(t *testing.T) {
	assert.Empty(t, MissingRequired([]string{"date", "open_price", "high_price", "low", "close_price", "volume"}))
	assert.Equal(t, []string{"open", "high", "low", "close", "volume"}, MissingRequired([]string{"date", "foo"}))
	assert.Equal(t, []string{"volume"}, MissingRequired([]string{"open", "high", "low", "close"}))
}
