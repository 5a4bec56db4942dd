// Package export writes indicator tables in flat file formats.
package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"TAPull/internal/domain/models"

	"github.com/guregu/null/v6"
)

// WriteCSV writes a header of it.Columns() followed by one record per bar.
// Undefined and absent cells are written empty.
func WriteCSV(w io.Writer, it *models.IndicatorTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(it.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, row := range it.Rows() {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = formatCell(cell)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile creates path and writes it as CSV. A failed close is reported
// since it may mean buffered data never reached disk.
func WriteCSVFile(path string, it *models.IndicatorTable) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := WriteCSV(bw, it); err != nil {
		return err
	}
	return bw.Flush()
}

// CSV renders it to a byte slice.
func CSV(it *models.IndicatorTable) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, it); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case null.Float:
		if !c.Valid {
			return ""
		}
		return formatFloat(c.Float64)
	case float64:
		return formatFloat(c)
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
