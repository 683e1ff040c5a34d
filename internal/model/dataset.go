package model

import "time"

// DatasetStatus tracks the lifecycle of a saved mapping configuration.
type DatasetStatus string

const (
	DatasetPending    DatasetStatus = "pending"
	DatasetProcessing DatasetStatus = "processing"
	DatasetCompleted  DatasetStatus = "completed"
	DatasetFailed     DatasetStatus = "failed"
)

// Dataset binds one uploaded file to one mapping configuration. Created on
// first save for a fileId; later saves for the same fileId update in place.
type Dataset struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	FileID       string         `json:"file_id"`
	FileName     string         `json:"file_name"`
	DataCategory string         `json:"data_category"`
	Mappings     []FieldMapping `json:"mappings"`
	TargetFields []TargetField  `json:"target_fields"`
	Status       DatasetStatus  `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DatasetPatch carries the fields of an upsert. Nil pointers are "leave
// as-is"; the merge never clears a stored value with a missing patch field.
type DatasetPatch struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	FileID       string         `json:"file_id"`
	FileName     *string        `json:"file_name,omitempty"`
	DataCategory *string        `json:"data_category,omitempty"`
	Mappings     []FieldMapping `json:"mappings,omitempty"`
	TargetFields []TargetField  `json:"target_fields,omitempty"`
	Status       *DatasetStatus `json:"status,omitempty"`
}
