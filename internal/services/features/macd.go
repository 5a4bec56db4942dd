package features

import "TAPull/internal/domain/models"

// MACD windows.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// ComputeMACD returns the MACD group, or nil when there are fewer closes than
// the slow window. The signal line is an EMA of the defined MACD line.
func ComputeMACD(closes []float64) *models.MACD {
	if len(closes) < MACDSlow {
		return nil
	}
	fast := EMA(closes, MACDFast)
	slow := EMA(closes, MACDSlow)

	line := models.NewSeries(len(closes))
	for i := range closes {
		if fast[i].Valid && slow[i].Valid {
			line.Set(i, fast[i].Float64-slow[i].Float64)
		}
	}
	signal := emaOfSeries(line, MACDSignal)
	hist := models.NewSeries(len(closes))
	for i := range closes {
		if line[i].Valid && signal[i].Valid {
			hist.Set(i, line[i].Float64-signal[i].Float64)
		}
	}
	return &models.MACD{Line: line, Signal: signal, Histogram: hist}
}
