package features

import "TAPull/internal/domain/models"

// PctChange computes the fractional change over lag bars: c_t / c_{t-lag} - 1.
// Cells whose reference close is zero stay undefined.
func PctChange(values []float64, lag int) models.Series {
	out := models.NewSeries(len(values))
	if lag <= 0 {
		return out
	}
	for i := lag; i < len(values); i++ {
		prev := values[i-lag]
		if prev == 0 {
			continue
		}
		out.Set(i, values[i]/prev-1)
	}
	return out
}

// Ratio divides num by den cell by cell. Cells where den is undefined or zero stay undefined.
func Ratio(num []float64, den models.Series) models.Series {
	out := models.NewSeries(len(num))
	for i := range num {
		if i >= len(den) || !den[i].Valid || den[i].Float64 == 0 {
			continue
		}
		out.Set(i, num[i]/den[i].Float64)
	}
	return out
}
