package features

import (
	"math"

	"TAPull/internal/domain/models"
)

// SMA computes the simple moving average over a trailing window.
// Cells before index period-1 are undefined.
func SMA(values []float64, period int) models.Series {
	out := models.NewSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out.Set(i, mean(values[i-period+1:i+1]))
	}
	return out
}

// EMA computes the exponential moving average with multiplier 2/(period+1).
// The first defined cell, at index period-1, is the SMA of the first period values.
func EMA(values []float64, period int) models.Series {
	out := models.NewSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	k := 2.0 / float64(period+1)
	cur := mean(values[:period])
	out.Set(period-1, cur)
	for i := period; i < len(values); i++ {
		cur = values[i]*k + cur*(1-k)
		out.Set(i, cur)
	}
	return out
}

// emaOfSeries runs EMA over the defined tail of s, starting at its first defined cell.
func emaOfSeries(s models.Series, period int) models.Series {
	out := models.NewSeries(len(s))
	start := s.FirstDefined()
	if start < 0 {
		return out
	}
	tail := make([]float64, 0, len(s)-start)
	for _, v := range s[start:] {
		if !v.Valid {
			return out
		}
		tail = append(tail, v.Float64)
	}
	for i, v := range EMA(tail, period) {
		out[start+i] = v
	}
	return out
}

// rollingStd is the population standard deviation over a trailing window.
func rollingStd(values []float64, period int) models.Series {
	out := models.NewSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		w := values[i-period+1 : i+1]
		m := mean(w)
		ss := 0.0
		for _, v := range w {
			d := v - m
			ss += d * d
		}
		out.Set(i, math.Sqrt(ss/float64(period)))
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
