package models

import "github.com/guregu/null/v6"

// Derived column names, in output order.
const (
	ColEMA12         = "ema_12"
	ColEMA26         = "ema_26"
	ColSMA20         = "sma_20"
	ColSMA50         = "sma_50"
	ColRSI14         = "rsi_14"
	ColRSI30         = "rsi_30"
	ColVolumeSMA     = "volume_sma"
	ColVolumeRatio   = "volume_ratio"
	ColMACD          = "macd"
	ColMACDSignal    = "macd_signal"
	ColMACDHistogram = "macd_histogram"
	ColBBLower       = "bb_lower"
	ColBBMiddle      = "bb_middle"
	ColBBUpper       = "bb_upper"
	ColBBWidth       = "bb_width"
	ColBBPosition    = "bb_position"
	ColATR           = "atr"
	ColReturns1D     = "returns_1d"
	ColReturns5D     = "returns_5d"
)

// Series is one derived column. An invalid cell is undefined.
type Series []null.Float

// NewSeries returns n undefined cells.
func NewSeries(n int) Series {
	return make(Series, n)
}

// Set defines cell i.
func (s Series) Set(i int, v float64) {
	s[i] = null.FloatFrom(v)
}

// Defined counts defined cells.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// FirstDefined returns the index of the first defined cell, or -1.
func (s Series) FirstDefined() int {
	for i, v := range s {
		if v.Valid {
			return i
		}
	}
	return -1
}

// MACD holds the convergence/divergence group.
type MACD struct {
	Line      Series
	Signal    Series
	Histogram Series
}

// Bollinger holds the volatility band group.
type Bollinger struct {
	Lower    Series
	Middle   Series
	Upper    Series
	Width    Series
	Position Series
}

// Indicators are the derived columns. MACD and Bollinger are nil when the
// table is too short for the underlying computation.
type Indicators struct {
	EMA12       Series
	EMA26       Series
	SMA20       Series
	SMA50       Series
	RSI14       Series
	RSI30       Series
	VolumeSMA   Series
	VolumeRatio Series
	MACD        *MACD
	Bollinger   *Bollinger
	ATR         Series
	Returns1D   Series
	Returns5D   Series
}

// IndicatorTable is an OHLCV table plus derived columns.
type IndicatorTable struct {
	Table *Table
	Indicators
}

type namedSeries struct {
	name string
	s    Series
}

func (it *IndicatorTable) derived() []namedSeries {
	out := []namedSeries{
		{ColEMA12, it.EMA12},
		{ColEMA26, it.EMA26},
		{ColSMA20, it.SMA20},
		{ColSMA50, it.SMA50},
		{ColRSI14, it.RSI14},
		{ColRSI30, it.RSI30},
		{ColVolumeSMA, it.VolumeSMA},
		{ColVolumeRatio, it.VolumeRatio},
	}
	if it.MACD != nil {
		out = append(out,
			namedSeries{ColMACD, it.MACD.Line},
			namedSeries{ColMACDSignal, it.MACD.Signal},
			namedSeries{ColMACDHistogram, it.MACD.Histogram},
		)
	}
	if it.Bollinger != nil {
		out = append(out,
			namedSeries{ColBBLower, it.Bollinger.Lower},
			namedSeries{ColBBMiddle, it.Bollinger.Middle},
			namedSeries{ColBBUpper, it.Bollinger.Upper},
			namedSeries{ColBBWidth, it.Bollinger.Width},
			namedSeries{ColBBPosition, it.Bollinger.Position},
		)
	}
	return append(out,
		namedSeries{ColATR, it.ATR},
		namedSeries{ColReturns1D, it.Returns1D},
		namedSeries{ColReturns5D, it.Returns5D},
	)
}

// DerivedColumns returns the names of the derived columns present.
func (it *IndicatorTable) DerivedColumns() []string {
	d := it.derived()
	out := make([]string, len(d))
	for i, n := range d {
		out[i] = n.name
	}
	return out
}

// Columns returns original columns followed by derived columns.
func (it *IndicatorTable) Columns() []string {
	return append(append([]string(nil), it.Table.Columns...), it.DerivedColumns()...)
}

// Column looks up a derived column by name.
func (it *IndicatorTable) Column(name string) (Series, bool) {
	for _, n := range it.derived() {
		if n.name == name {
			return n.s, true
		}
	}
	return nil, false
}

// Len returns the number of rows.
func (it *IndicatorTable) Len() int { return it.Table.Len() }

// Rows returns one cell slice per bar, ordered as Columns. Derived cells are null.Float.
func (it *IndicatorTable) Rows() [][]any {
	d := it.derived()
	rows := make([][]any, it.Table.Len())
	for i := range rows {
		row := make([]any, 0, len(it.Table.Columns)+len(d))
		for _, c := range it.Table.Columns {
			row = append(row, it.Table.Cell(i, c))
		}
		for _, n := range d {
			row = append(row, n.s[i])
		}
		rows[i] = row
	}
	return rows
}

// IndicatorsRequest is the query of GET /api/indicators.
type IndicatorsRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required,max=16"`
	StartDate string `query:"start_date" json:"start_date" validate:"required"`
	EndDate   string `query:"end_date" json:"end_date" validate:"required"`
	Format    string `query:"format" json:"format" default:"json" validate:"oneof=json csv"`
}

// IndicatorsResponse is the JSON body of GET /api/indicators.
type IndicatorsResponse struct {
	Symbol  string   `json:"symbol"`
	Count   int      `json:"count"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
