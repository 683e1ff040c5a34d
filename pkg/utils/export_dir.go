package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportDir manages where exported dataset files land on disk.
type ExportDir struct {
	Base string
}

func NewExportDir(base string) *ExportDir {
	return &ExportDir{Base: base}
}

// DatasetDir creates (if needed) and returns the per-dataset directory.
func (d *ExportDir) DatasetDir(datasetID string) (string, error) {
	dir := filepath.Join(d.Base, filepath.Base(datasetID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	return dir, nil
}

// FilePath returns the full on-disk path for an export file. The file name
// is stripped of any path separators before joining.
func (d *ExportDir) FilePath(datasetID, fileName string) (string, error) {
	dir, err := d.DatasetDir(datasetID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(fileName)), nil
}

// DownloadURL returns the API route a saved export is served from.
func (d *ExportDir) DownloadURL(datasetID, fileName string) string {
	return fmt.Sprintf("/api/v1/exports/%s/%s", filepath.Base(datasetID), filepath.Base(fileName))
}

// ContentType maps an export file extension to its response content type.
func (d *ExportDir) ContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
