package features

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"TAPull/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bars(closes, volumes []float64, priceSuffix bool) []models.Record {
	name := func(c string) string {
		if priceSuffix {
			return c + "_price"
		}
		return c
	}
	out := make([]models.Record, len(closes))
	for i, c := range closes {
		out[i] = models.Record{
			"symbol":      "AAPL",
			"date":        fmt.Sprintf("2024-01-%02d", i+1),
			name("open"):  c - 1,
			name("high"):  c + 2,
			name("low"):   c - 2,
			name("close"): c,
			"volume":      volumes[i],
		}
	}
	return out
}

func TestCompute_ConstantCloseScenario(t *testing.T) {
	recs := bars(constant(5, 100), []float64{100, 200, 150, 300, 250}, false)
	it, err := ComputeRecords("AAPL", recs...)
	require.NoError(t, err)

	assert.Equal(t, 5, it.Len())
	assertUndefined(t, "returns_1d", it.Returns1D, 0)
	for i := 1; i < 5; i++ {
		assertClose(t, "returns_1d", it.Returns1D, i, 0)
	}
	assert.Nil(t, it.Bollinger)
	assert.Nil(t, it.MACD)
	assert.NotContains(t, it.Columns(), models.ColBBWidth)
	assert.NotContains(t, it.Columns(), models.ColMACD)
	assert.Equal(t, 0, it.VolumeSMA.Defined())
	assert.Equal(t, 0, it.VolumeRatio.Defined())
	assert.Equal(t, 0, it.EMA12.Defined())
}

func TestCompute_ColumnOrder(t *testing.T) {
	recs := bars(wave(60), constant(60, 1000), false)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range recs {
		recs[i]["date"] = day.AddDate(0, 0, i).Format("2006-01-02")
	}
	it, err := ComputeRecords("AAPL", recs...)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"symbol", "date", "open", "high", "low", "close", "volume",
		"ema_12", "ema_26", "sma_20", "sma_50", "rsi_14", "rsi_30", "volume_sma", "volume_ratio",
		"macd", "macd_signal", "macd_histogram",
		"bb_lower", "bb_middle", "bb_upper", "bb_width", "bb_position",
		"atr", "returns_1d", "returns_5d",
	}, it.Columns())

	original := []string{"symbol", "date", "open", "high", "low", "close", "volume"}
	rows := it.Rows()
	require.Len(t, rows, len(recs))
	for i, row := range rows {
		require.Len(t, row, len(it.Columns()))
		for j, col := range original {
			assert.Equal(t, recs[i][col], row[j], "row %d column %s", i, col)
		}
	}
}

func TestCompute_MissingColumns(t *testing.T) {
	_, err := ComputeRecords("AAPL",
		models.Record{"date": "2024-01-01", "open": 1.0, "high": 2.0, "low": 0.5},
	)
	var se *models.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"close", "volume"}, se.Missing)
}

func TestCompute_PriceSuffixEquivalent(t *testing.T) {
	closes, volumes := wave(70), constant(70, 500)

	canonical, err := ComputeRecords("AAPL", bars(closes, volumes, false)...)
	require.NoError(t, err)
	suffixed, err := ComputeRecords("AAPL", bars(closes, volumes, true)...)
	require.NoError(t, err)

	assert.Equal(t, canonical.Indicators, suffixed.Indicators)
	assert.Equal(t, canonical.DerivedColumns(), suffixed.DerivedColumns())
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	table, err := models.NewTable("AAPL", models.NewFrame(bars(wave(30), constant(30, 10), false)...))
	require.NoError(t, err)
	before := table.Clone()

	it, err := Compute(table)
	require.NoError(t, err)
	assert.Equal(t, before, table)

	it.Table.Bars[0].Close = -1
	it.Table.Bars[0].Extra["symbol"] = "MSFT"
	assert.Equal(t, before, table)
}

func TestCompute_Deterministic(t *testing.T) {
	recs := bars(wave(80), wave(80), false)
	a, err := ComputeRecords("AAPL", recs...)
	require.NoError(t, err)
	b, err := ComputeRecords("AAPL", recs...)
	require.NoError(t, err)
	assert.Equal(t, a.Rows(), b.Rows())
}

// ema_12 runs over 20 bars, not 12.
func TestCompute_EMA12UsesTwentyBarWindow(t *testing.T) {
	closes := wave(40)
	it, err := ComputeRecords("AAPL", bars(closes, constant(40, 1), false)...)
	require.NoError(t, err)

	assert.Equal(t, EMA(closes, 20), it.EMA12)
	assert.NotEqual(t, EMA(closes, 12), it.EMA12)
	assert.Equal(t, 19, it.EMA12.FirstDefined())
}

func TestCompute_VolumeRatio(t *testing.T) {
	volumes := make([]float64, 25)
	for i := range volumes {
		volumes[i] = float64(100 + 10*i)
	}
	it, err := ComputeRecords("AAPL", bars(wave(25), volumes, false)...)
	require.NoError(t, err)

	for i := range volumes {
		if !it.VolumeSMA[i].Valid {
			assertUndefined(t, "volume_ratio", it.VolumeRatio, i)
			continue
		}
		assertClose(t, "volume_ratio", it.VolumeRatio, i, volumes[i]/it.VolumeSMA[i].Float64)
	}
	assert.Equal(t, 19, it.VolumeRatio.FirstDefined())
}

func TestCompute_OutOfOrder(t *testing.T) {
	recs := bars(constant(3, 10), constant(3, 1), false)
	recs[2]["date"] = "2023-12-31"

	_, err := ComputeRecords("AAPL", recs...)
	var oe *OrderError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, 2, oe.Index)
	assert.Contains(t, err.Error(), "2023-12-31")
}

func TestCompute_Undated(t *testing.T) {
	recs := bars(constant(3, 10), constant(3, 1), false)
	for _, r := range recs {
		delete(r, "date")
	}
	it, err := ComputeRecords("AAPL", recs...)
	require.NoError(t, err)
	assert.NotContains(t, it.Columns(), "date")
}

func TestCompute_Empty(t *testing.T) {
	_, err := Compute(nil)
	assert.True(t, errors.Is(err, models.ErrEmptyTable))

	_, err = ComputeRecords("AAPL")
	assert.True(t, errors.Is(err, models.ErrEmptyTable))
}
