package features

import "TAPull/internal/domain/models"

// Bollinger band parameters.
const (
	BollingerPeriod = 20
	BollingerStdDev = 2.0
)

// ComputeBollinger returns the band group, or nil when there are fewer closes
// than the band period. Width is relative to the middle band; position is where
// the close sits between the bands.
func ComputeBollinger(closes []float64) *models.Bollinger {
	if len(closes) < BollingerPeriod {
		return nil
	}
	mid := SMA(closes, BollingerPeriod)
	std := rollingStd(closes, BollingerPeriod)

	n := len(closes)
	b := &models.Bollinger{
		Lower:    models.NewSeries(n),
		Middle:   mid,
		Upper:    models.NewSeries(n),
		Width:    models.NewSeries(n),
		Position: models.NewSeries(n),
	}
	for i := range closes {
		if !mid[i].Valid || !std[i].Valid {
			continue
		}
		m, s := mid[i].Float64, std[i].Float64
		upper, lower := m+BollingerStdDev*s, m-BollingerStdDev*s
		b.Upper.Set(i, upper)
		b.Lower.Set(i, lower)
		if m != 0 {
			b.Width.Set(i, (upper-lower)/m)
		}
		if upper != lower {
			b.Position.Set(i, (closes[i]-lower)/(upper-lower))
		}
	}
	return b
}
