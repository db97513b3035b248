package storage

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/IshaanNene/CompareGoat/internal/compare"
)

// CSVHeader is the header row of an exported comparison table.
var CSVHeader = []string{"Product Name", "Price", "Rating", "Reviews", "Key Feature"}

// WriteCSV writes rows as a UTF-8 CSV table with a single header row.
// Absent values are written as "N/A".
func WriteCSV(w io.Writer, rows []compare.Row, currency string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Title,
			compare.FormatPrice(currency, r.Price),
			compare.FormatRating(r.Rating),
			compare.FormatCount(r.Reviews),
			r.KeyFeature,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
