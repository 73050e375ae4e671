package storage

import (
	"bytes"
	"encoding/csv"

	"github.com/sammyzayn123/review-scraper/internal/types"
)

// EncodeCSV serializes a review table with the fixed column header. Column
// and row order are stable, so identical input pages produce byte-identical
// output.
func EncodeCSV(table *types.ReviewTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(types.Columns); err != nil {
		return nil, &types.StorageError{Backend: "csv", Err: err}
	}
	for _, row := range table.Rows() {
		if err := w.Write(row); err != nil {
			return nil, &types.StorageError{Backend: "csv", Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &types.StorageError{Backend: "csv", Err: err}
	}
	return buf.Bytes(), nil
}
