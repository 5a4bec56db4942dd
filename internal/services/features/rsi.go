package features

import "TAPull/internal/domain/models"

// RSI computes the Wilder-smoothed relative strength index.
// The first value, at index period, is seeded by the mean gain and loss of the
// first period changes. A window with no movement at all is undefined.
func RSI(values []float64, period int) models.Series {
	out := models.NewSeries(len(values))
	if period <= 0 || len(values) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		g, l := split(values[i] - values[i-1])
		avgGain += g
		avgLoss += l
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p
	setRSI(out, period, avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		g, l := split(values[i] - values[i-1])
		avgGain = (avgGain*(p-1) + g) / p
		avgLoss = (avgLoss*(p-1) + l) / p
		setRSI(out, i, avgGain, avgLoss)
	}
	return out
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func setRSI(out models.Series, i int, avgGain, avgLoss float64) {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return
	case avgLoss == 0:
		out.Set(i, 100)
	default:
		rs := avgGain / avgLoss
		out.Set(i, 100-100/(1+rs))
	}
}
