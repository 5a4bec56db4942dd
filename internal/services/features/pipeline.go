package features

import (
	"fmt"

	"TAPull/internal/domain/models"
	"TAPull/pkg/util"
)

// Indicator windows.
const (
	// EMAShortWindow backs the ema_12 column. The column keeps its historical
	// label although the average runs over 20 bars.
	EMAShortWindow = 20
	EMALongWindow  = 26
	SMAShortWindow = 20
	SMALongWindow  = 50
	RSIShortWindow = 14
	RSILongWindow  = 30
	VolumeWindow   = 20
	ATRWindow      = 14
)

// OrderError reports a dated table whose bars are not chronological.
type OrderError struct {
	Index int
	Prev  string
	Date  string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("bars out of order at row %d: %s after %s", e.Index, e.Date, e.Prev)
}

// Compute derives the indicator columns for table. The input table is not
// modified; the result carries its own copy.
func Compute(table *models.Table) (*models.IndicatorTable, error) {
	if table == nil || table.Len() == 0 {
		return nil, models.ErrEmptyTable
	}
	t := table.Clone()
	if t.Dated() {
		if i := t.FirstUnordered(); i >= 0 {
			return nil, &OrderError{
				Index: i,
				Prev:  t.Bars[i-1].Date.Format(util.DateLayout),
				Date:  t.Bars[i].Date.Format(util.DateLayout),
			}
		}
	}

	closes := t.Closes()
	volumes := t.Volumes()
	volumeSMA := SMA(volumes, VolumeWindow)

	return &models.IndicatorTable{
		Table: t,
		Indicators: models.Indicators{
			EMA12:       EMA(closes, EMAShortWindow),
			EMA26:       EMA(closes, EMALongWindow),
			SMA20:       SMA(closes, SMAShortWindow),
			SMA50:       SMA(closes, SMALongWindow),
			RSI14:       RSI(closes, RSIShortWindow),
			RSI30:       RSI(closes, RSILongWindow),
			VolumeSMA:   volumeSMA,
			VolumeRatio: Ratio(volumes, volumeSMA),
			MACD:        ComputeMACD(closes),
			Bollinger:   ComputeBollinger(closes),
			ATR:         ATR(t.Highs(), t.Lows(), closes, ATRWindow),
			Returns1D:   PctChange(closes, 1),
			Returns5D:   PctChange(closes, 5),
		},
	}, nil
}

// ComputeFrame validates a decoded payload and computes its indicators.
func ComputeFrame(symbol string, f *models.Frame) (*models.IndicatorTable, error) {
	t, err := models.NewTable(symbol, f)
	if err != nil {
		return nil, err
	}
	return Compute(t)
}

// ComputeRecords is ComputeFrame for in-memory rows.
func ComputeRecords(symbol string, records ...models.Record) (*models.IndicatorTable, error) {
	return ComputeFrame(symbol, models.NewFrame(records...))
}
