package handler

import (
	"net/http"

	"github.com/jigardalal/databridge/internal/ingest"
)

// maxUploadBytes caps in-memory parsing of uploaded spreadsheets.
const maxUploadBytes = 32 << 20

// ParseFile parses an uploaded spreadsheet file
// @Summary Parse uploaded file
// @Description Parse a CSV or TSV upload into headers and coerced rows
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet file"
// @Success 200 {object} map[string]interface{} "Headers and rows"
// @Failure 400 {object} map[string]interface{} "Missing, empty or malformed file"
// @Router /files/parse [post]
func (h *Handler) ParseFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeBadRequest(w, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	parsed, err := ingest.Parse(file, header.Filename)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"file_name": header.Filename,
		"headers":   parsed.Headers,
		"rows":      parsed.Rows,
		"row_count": len(parsed.Rows),
	})
}
