package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jigardalal/databridge/internal/export"
	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/internal/transform"
)

const datasetsPrefix = "/api/v1/datasets/"

// SaveDataset creates or updates a dataset
// @Summary Save dataset
// @Description Upsert a dataset keyed by file_id; omitted fields on an existing dataset are left unchanged
// @Tags datasets
// @Accept json
// @Produce json
// @Param dataset body model.DatasetPatch true "Dataset fields"
// @Success 200 {object} model.Dataset "Saved dataset"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /datasets [post]
func (h *Handler) SaveDataset(w http.ResponseWriter, r *http.Request) {
	var patch model.DatasetPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, err)
		return
	}
	if patch.FileID == "" {
		writeBadRequest(w, "file_id is required")
		return
	}

	dataset, err := h.Store.SaveDataset(patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataset)
}

// ListDatasets retrieves all saved datasets
// @Summary List datasets
// @Description Get all saved datasets, newest first
// @Tags datasets
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Datasets"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.Store.ListDatasets()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if datasets == nil {
		datasets = []model.Dataset{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// GetDataset retrieves a specific dataset
// @Summary Get dataset
// @Description Load a dataset by id; legacy mapping payloads are normalized on read
// @Tags datasets
// @Accept json
// @Produce json
// @Param id path string true "Dataset ID"
// @Success 200 {object} model.Dataset "Dataset"
// @Failure 400 {object} map[string]interface{} "Invalid dataset ID"
// @Failure 404 {object} map[string]interface{} "Dataset not found"
// @Router /datasets/{id} [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if !strings.HasPrefix(path, datasetsPrefix) {
		writeBadRequest(w, "invalid path")
		return
	}

	datasetID := path[len(datasetsPrefix):]
	if datasetID == "" || strings.Contains(datasetID, "/") {
		writeBadRequest(w, "dataset ID is required")
		return
	}

	dataset, err := h.Store.LoadDataset(datasetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataset)
}

type exportRequest struct {
	Rows   []model.Row `json:"rows"`
	Format string      `json:"format,omitempty"`
}

// ExportDataset materializes and exports a dataset
// @Summary Export dataset
// @Description Apply the dataset's mappings to the supplied rows and stream the result as CSV or JSON
// @Tags datasets
// @Accept json
// @Produce json
// @Param id path string true "Dataset ID"
// @Param request body exportRequest true "Rows to export and output format"
// @Success 200 {file} file "Exported data"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 404 {object} map[string]interface{} "Dataset not found"
// @Router /datasets/{id}/export [post]
func (h *Handler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	suffix := "/export"
	if !strings.HasPrefix(path, datasetsPrefix) || !strings.HasSuffix(path, suffix) {
		writeBadRequest(w, "invalid path")
		return
	}

	datasetID := path[len(datasetsPrefix) : len(path)-len(suffix)]
	if datasetID == "" {
		writeBadRequest(w, "dataset ID is required")
		return
	}

	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if len(req.Rows) == 0 {
		writeDomainError(w, model.ErrNoDataProvided)
		return
	}

	dataset, err := h.Store.LoadDataset(datasetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows, rowErrors := transform.MaterializeRows(dataset.Mappings, req.Rows)

	targets := dataset.TargetFields
	if len(targets) == 0 && dataset.DataCategory != "" {
		targets, _ = h.Schemas.TargetFields(dataset.DataCategory)
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeBadRequest(w, "format must be csv or json")
		return
	}

	fileName := dataset.FileID + "." + format

	// Exports are streamed to the client and, when an export directory is
	// configured, kept on disk for later download.
	var out io.Writer = w
	if h.Exports != nil {
		if path, err := h.Exports.FilePath(datasetID, fileName); err == nil {
			if f, err := os.Create(path); err == nil {
				defer f.Close()
				out = io.MultiWriter(w, f)
				w.Header().Set("X-Download-URL", h.Exports.DownloadURL(datasetID, fileName))
			} else {
				fmt.Printf("⚠️ Could not persist export for dataset %s: %v\n", datasetID, err)
			}
		}
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("X-Export-Errors", fmt.Sprintf("%d", len(rowErrors)))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		if _, err := export.WriteCSV(out, targets, rows); err != nil {
			fmt.Printf("❌ CSV export failed for dataset %s: %v\n", datasetID, err)
		}
	case "json":
		w.Header().Set("Content-Type", "application/json")
		if _, err := export.WriteJSON(out, rows); err != nil {
			fmt.Printf("❌ JSON export failed for dataset %s: %v\n", datasetID, err)
		}
	}
}

// DownloadExport serves a previously persisted export file
// @Summary Download export
// @Description Download a saved export file for a dataset
// @Tags datasets
// @Produce application/octet-stream
// @Param id path string true "Dataset ID"
// @Param filename path string true "Export file name"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} map[string]interface{} "Invalid URL format"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /exports/{id}/{filename} [get]
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	if h.Exports == nil {
		writeBadRequest(w, "export persistence is not configured")
		return
	}

	// URL format: /api/v1/exports/{datasetID}/{filename}
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 5 {
		writeBadRequest(w, "invalid URL format")
		return
	}
	datasetID := pathParts[3]
	fileName := pathParts[4]

	filePath, err := h.Exports.FilePath(datasetID, fileName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]string{"code": "not_found", "message": "export file not found"},
		})
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", h.Exports.ContentType(fileName))
	http.ServeFile(w, r, filePath)
}
