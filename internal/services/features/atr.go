package features

import (
	"math"

	"TAPull/internal/domain/models"
)

// TrueRange returns high-low for the first bar and the widest of high-low,
// |high-prevClose| and |low-prevClose| afterwards.
func TrueRange(high, low, close []float64) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		tr := high[i] - low[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(high[i]-close[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-close[i-1]))
		}
		out[i] = tr
	}
	return out
}

// ATR computes Wilder's average true range. The first value, at index period,
// is the mean of the true ranges of bars 1..period.
func ATR(high, low, close []float64, period int) models.Series {
	out := models.NewSeries(len(close))
	if period <= 0 || len(close) < period+1 {
		return out
	}
	tr := TrueRange(high, low, close)
	cur := mean(tr[1 : period+1])
	out.Set(period, cur)
	p := float64(period)
	for i := period + 1; i < len(tr); i++ {
		cur = (cur*(p-1) + tr[i]) / p
		out.Set(i, cur)
	}
	return out
}
