package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/pkg/utils"
)

// Parsed is the collaborator contract the mapping pipeline consumes: column
// headers plus row objects, however the file was stored upstream.
type Parsed struct {
	Headers []string    `json:"headers"`
	Rows    []model.Row `json:"rows"`
}

// Parse reads a delimited file into headers and rows. Blank rows are
// filtered; a file with zero remaining data rows fails with EmptyFile,
// malformed content with ParseError. XLSX conversion happens upstream; by
// the time bytes reach this parser they are CSV-shaped.
func Parse(r io.Reader, fileName string) (Parsed, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	if strings.EqualFold(filepath.Ext(fileName), ".tsv") {
		csvReader.Comma = '\t'
	}

	headers, err := csvReader.Read()
	if err == io.EOF {
		return Parsed{}, model.NewError(model.CodeEmptyFile, "%s has no content", fileName)
	}
	if err != nil {
		return Parsed{}, model.NewError(model.CodeParseError, "failed to read header of %s: %v", fileName, err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows []model.Row
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Parsed{}, model.NewError(model.CodeParseError, "failed to read row of %s: %v", fileName, err)
		}
		if isBlank(record) {
			continue
		}

		row := make(model.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = utils.ParseValue(record[i])
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return Parsed{}, model.NewError(model.CodeEmptyFile, "%s has no data rows after filtering", fileName)
	}

	fmt.Printf("➡️ Parsed %s: %d columns, %d rows\n", fileName, len(headers), len(rows))
	return Parsed{Headers: headers, Rows: rows}, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
