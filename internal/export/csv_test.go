package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TAPull/internal/domain/models"
	"TAPull/internal/services/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, n int) *models.IndicatorTable {
	t.Helper()
	recs := make([]models.Record, n)
	for i := range recs {
		c := 100 + float64(i)
		recs[i] = models.Record{
			"symbol":      "MSFT",
			"date":        fmt.Sprintf("2024-02-%02d", i+1),
			"open_price":  c,
			"high_price":  c + 0.5,
			"low_price":   c - 0.5,
			"close_price": c,
			"volume":      1000.0,
		}
	}
	it, err := features.ComputeRecords("MSFT", recs...)
	require.NoError(t, err)
	return it
}

func TestWriteCSV_HeaderAndCells(t *testing.T) {
	it := table(t, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, it))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)

	header := recs[0]
	assert.Equal(t, []string{"symbol", "date", "open", "high", "low", "close", "volume"}, header[:7])
	assert.Equal(t, it.Columns(), header)

	idx := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %s not in header", name)
		return -1
	}

	first := recs[1]
	assert.Equal(t, "MSFT", first[idx("symbol")])
	assert.Equal(t, "2024-02-01", first[idx("date")])
	assert.Equal(t, "100.5", first[idx("high")])
	assert.Equal(t, "1000", first[idx("volume")])
	assert.Equal(t, "", first[idx(models.ColSMA20)])
	assert.Equal(t, "", first[idx(models.ColReturns1D)])

	second := recs[2]
	assert.NotEmpty(t, second[idx(models.ColReturns1D)])
	assert.Equal(t, "", second[idx(models.ColRSI14)])
}

func TestWriteCSV_Deterministic(t *testing.T) {
	a, err := CSV(table(t, 40))
	require.NoError(t, err)
	b, err := CSV(table(t, 40))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasSuffix(string(a), "\n"))
}

func TestWriteCSVFile(t *testing.T) {
	it := table(t, 5)
	path := filepath.Join(t.TempDir(), "msft.csv")
	require.NoError(t, WriteCSVFile(path, it))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := CSV(it)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteCSVFile_CreateError(t *testing.T) {
	err := WriteCSVFile(filepath.Join(t.TempDir(), "missing", "out.csv"), table(t, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "1.25", formatCell(1.25))
	assert.Equal(t, "true", formatCell(true))
	assert.Equal(t, "x", formatCell("x"))
	assert.Equal(t, "7", formatCell(7))
}
