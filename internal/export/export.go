package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/pkg/utils"
)

// Result summarizes one export operation.
type Result struct {
	Format      string    `json:"format"` // "csv" or "json"
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// WriteCSV writes materialized rows as CSV with one column per target
// field, in schema order. Field order is what makes the output round-trip
// cleanly into downstream systems.
func WriteCSV(w io.Writer, targetFields []model.TargetField, rows []model.Row) (Result, error) {
	writer := csv.NewWriter(w)

	header := make([]string, len(targetFields))
	for i, tf := range targetFields {
		header[i] = tf.Name
	}
	if err := writer.Write(header); err != nil {
		return Result{}, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, len(targetFields))
		for i, tf := range targetFields {
			record[i] = utils.Stringify(row[tf.Name])
		}
		if err := writer.Write(record); err != nil {
			return Result{}, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return Result{}, fmt.Errorf("failed to flush CSV: %w", err)
	}

	fmt.Printf("💾 Export: %d records written as CSV\n", len(rows))
	return Result{Format: "csv", RecordCount: len(rows), ExportedAt: time.Now().UTC()}, nil
}

// WriteJSON writes materialized rows as a JSON array.
func WriteJSON(w io.Writer, rows []model.Row) (Result, error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return Result{}, fmt.Errorf("failed to encode JSON export: %w", err)
	}

	fmt.Printf("💾 Export: %d records written as JSON\n", len(rows))
	return Result{Format: "json", RecordCount: len(rows), ExportedAt: time.Now().UTC()}, nil
}
