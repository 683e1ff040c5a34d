package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jigardalal/databridge/internal/model"
)

// SaveDataset upserts a dataset keyed by fileId. Non-nil patch fields are
// merged into the existing record; a new record with defaults is created
// when the fileId has never been saved. updated_at is bumped on every save.
func (s *Store) SaveDataset(patch model.DatasetPatch) (model.Dataset, error) {
	if patch.FileID == "" {
		return model.Dataset{}, model.NewError(model.CodeInvalidInput, "file_id is required")
	}

	existing, err := s.datasetByFileID(patch.FileID)
	now := time.Now().UTC()
	switch {
	case err == sql.ErrNoRows:
		existing = model.Dataset{
			ID:        uuid.New().String(),
			FileID:    patch.FileID,
			Status:    model.DatasetPending,
			CreatedAt: now,
		}
	case err != nil:
		return model.Dataset{}, fmt.Errorf("failed to load dataset for upsert: %w", err)
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Description != nil {
		existing.Description = *patch.Description
	}
	if patch.FileName != nil {
		existing.FileName = *patch.FileName
	}
	if patch.DataCategory != nil {
		existing.DataCategory = *patch.DataCategory
	}
	if patch.Mappings != nil {
		existing.Mappings = patch.Mappings
	}
	if patch.TargetFields != nil {
		existing.TargetFields = patch.TargetFields
	}
	if patch.Status != nil {
		existing.Status = *patch.Status
	}
	existing.UpdatedAt = now

	mappingsJSON, err := json.Marshal(existing.Mappings)
	if err != nil {
		return model.Dataset{}, err
	}
	targetsJSON, err := json.Marshal(existing.TargetFields)
	if err != nil {
		return model.Dataset{}, err
	}

	_, err = s.db.Exec(`
		INSERT INTO datasets (id, file_id, name, description, file_name, data_category, mappings, target_fields, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			file_name = excluded.file_name,
			data_category = excluded.data_category,
			mappings = excluded.mappings,
			target_fields = excluded.target_fields,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		existing.ID, existing.FileID, existing.Name, existing.Description, existing.FileName,
		existing.DataCategory, string(mappingsJSON), string(targetsJSON), string(existing.Status),
		existing.CreatedAt, existing.UpdatedAt)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to save dataset: %w", err)
	}

	return existing, nil
}

// LoadDataset fetches a dataset by id, normalizing any legacy mappings
// representation to a flat FieldMapping slice.
func (s *Store) LoadDataset(datasetID string) (model.Dataset, error) {
	row := s.db.QueryRow(`
		SELECT id, file_id, name, description, file_name, data_category, mappings, target_fields, status, created_at, updated_at
		FROM datasets WHERE id = ?`, datasetID)

	ds, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return model.Dataset{}, model.NewError(model.CodeDatasetNotFound, "dataset not found: %s", datasetID)
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	return ds, nil
}

// ListDatasets returns all saved datasets, newest first.
func (s *Store) ListDatasets() ([]model.Dataset, error) {
	rows, err := s.db.Query(`
		SELECT id, file_id, name, description, file_name, data_category, mappings, target_fields, status, created_at, updated_at
		FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []model.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

func (s *Store) datasetByFileID(fileID string) (model.Dataset, error) {
	row := s.db.QueryRow(`
		SELECT id, file_id, name, description, file_name, data_category, mappings, target_fields, status, created_at, updated_at
		FROM datasets WHERE file_id = ?`, fileID)
	return scanDataset(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (model.Dataset, error) {
	var ds model.Dataset
	var mappingsJSON, targetsJSON, status string
	err := row.Scan(&ds.ID, &ds.FileID, &ds.Name, &ds.Description, &ds.FileName,
		&ds.DataCategory, &mappingsJSON, &targetsJSON, &status, &ds.CreatedAt, &ds.UpdatedAt)
	if err != nil {
		return model.Dataset{}, err
	}
	ds.Status = model.DatasetStatus(status)

	mappings, wrappedTargets, err := NormalizeMappings([]byte(mappingsJSON))
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to decode stored mappings: %w", err)
	}
	ds.Mappings = mappings

	if targetsJSON != "" && targetsJSON != "null" {
		if err := json.Unmarshal([]byte(targetsJSON), &ds.TargetFields); err != nil {
			return model.Dataset{}, fmt.Errorf("failed to decode stored target fields: %w", err)
		}
	}
	// Legacy wrapper shape carried target fields inside the mappings column.
	if len(ds.TargetFields) == 0 && len(wrappedTargets) > 0 {
		ds.TargetFields = wrappedTargets
	}
	return ds, nil
}

// legacyWrapper is the historical object shape for the mappings column.
type legacyWrapper struct {
	Configurations []model.FieldMapping `json:"configurations"`
	TargetFields   []model.TargetField  `json:"targetFields"`
}

// NormalizeMappings decodes the stored mappings column, accepting the three
// historical shapes: a flat FieldMapping array, a {configurations,
// targetFields} wrapper, or a map whose values individually look like
// FieldMapping objects. It always yields a flat slice; the legacy shapes
// never leak past this boundary.
func NormalizeMappings(raw []byte) ([]model.FieldMapping, []model.TargetField, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []model.FieldMapping{}, nil, nil
	}

	// Canonical shape: flat array.
	var flat []model.FieldMapping
	if err := json.Unmarshal(raw, &flat); err == nil {
		if flat == nil {
			flat = []model.FieldMapping{}
		}
		return flat, nil, nil
	}

	// Legacy wrapper: {configurations: [...], targetFields: [...]}.
	var wrapper legacyWrapper
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Configurations != nil {
		return wrapper.Configurations, wrapper.TargetFields, nil
	}

	// Legacy map-of-objects, duck-typed by presence of both input_field and
	// output_field on every value.
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		keys := make([]string, 0, len(asMap))
		for k := range asMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		mappings := make([]model.FieldMapping, 0, len(asMap))
		for _, k := range keys {
			var probe map[string]json.RawMessage
			if err := json.Unmarshal(asMap[k], &probe); err != nil {
				return nil, nil, fmt.Errorf("mappings value %q is not an object", k)
			}
			if _, ok := probe["input_field"]; !ok {
				return nil, nil, fmt.Errorf("mappings value %q lacks input_field", k)
			}
			if _, ok := probe["output_field"]; !ok {
				return nil, nil, fmt.Errorf("mappings value %q lacks output_field", k)
			}
			var m model.FieldMapping
			if err := json.Unmarshal(asMap[k], &m); err != nil {
				return nil, nil, err
			}
			mappings = append(mappings, m)
		}
		return mappings, nil, nil
	}

	return nil, nil, fmt.Errorf("unrecognized mappings representation")
}
