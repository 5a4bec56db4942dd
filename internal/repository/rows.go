package repository

import (
	"TAPull/internal/domain/models"

	"github.com/guregu/null/v6"
)

// indicatorRow flattens one bar of an indicator table into column -> value.
// Undefined derived cells map to nil.
func indicatorRow(it *models.IndicatorTable, cols []string, row []any) map[string]any {
	out := make(map[string]any, len(cols)+1)
	out["symbol"] = it.Table.Symbol
	for i, c := range cols {
		switch v := row[i].(type) {
		case null.Float:
			if v.Valid {
				out[c] = v.Float64
			} else {
				out[c] = nil
			}
		default:
			out[c] = v
		}
	}
	return out
}
