package model

import "time"

// Row is a schema-agnostic record keyed by column name.
type Row map[string]interface{}

// FieldType enumerates the value types a target field can hold.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
)

// TargetField describes one column of a target schema category.
type TargetField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
}

// TransformationType enumerates the supported per-field transformations.
type TransformationType string

const (
	TransformNone        TransformationType = "none"
	TransformConcatenate TransformationType = "concatenate"
	TransformSubstring   TransformationType = "substring"
	TransformArithmetic  TransformationType = "arithmetic"
	TransformConditional TransformationType = "conditional"
	TransformCustom      TransformationType = "custom"
	TransformAI          TransformationType = "ai"
)

// ManualInputField marks a mapping the user added by hand, with no
// corresponding source column.
const ManualInputField = "MANUAL"

// FieldMapping associates one input column with one target field.
type FieldMapping struct {
	InputField          string             `json:"input_field"`
	OutputField         string             `json:"output_field"`
	Confidence          float64            `json:"confidence"`
	TransformationType  TransformationType `json:"transformation_type"`
	TransformationLogic string             `json:"transformation_logic,omitempty"`
	AIPrompt            string             `json:"ai_prompt,omitempty"`
}

// MappingResult is the outcome of mapping a set of input fields onto a
// target schema.
type MappingResult struct {
	Mappings          []FieldMapping `json:"mappings"`
	UnmappedFields    []string       `json:"unmapped_fields"`
	OverallConfidence float64        `json:"overall_confidence"`
}

// CachedMapping is the slimmed-down form persisted in the mapping cache:
// the field pair plus confidence, explanations dropped.
type CachedMapping struct {
	InputField  string  `json:"input_field"`
	OutputField string  `json:"output_field"`
	Confidence  float64 `json:"confidence"`
}

// MappingCacheEntry is one memoized mapping result.
type MappingCacheEntry struct {
	DataCategory string          `json:"data_category"`
	InputFields  []string        `json:"input_fields"` // sorted
	Mappings     []CachedMapping `json:"mappings"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ClassificationResult is the outcome of coarse content-type classification
// over a tab's headers and sample rows.
type ClassificationResult struct {
	ClassifiedType    string         `json:"classified_type"`
	ConfidenceScore   float64        `json:"confidence_score"`
	Reasoning         string         `json:"reasoning"`
	SuggestedMappings []FieldMapping `json:"suggested_mappings"`
}

// MeanConfidence returns the mean per-mapping confidence, 0 when the slice
// is empty. Overall confidence is always recomputed from the per-mapping
// values rather than trusted from upstream.
func MeanConfidence(mappings []FieldMapping) float64 {
	if len(mappings) == 0 {
		return 0
	}
	var sum float64
	for _, m := range mappings {
		sum += m.Confidence
	}
	return sum / float64(len(mappings))
}

// UnmappedTargets returns the target field names no mapping covers.
func UnmappedTargets(targets []TargetField, mappings []FieldMapping) []string {
	covered := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		if m.OutputField != "" {
			covered[m.OutputField] = true
		}
	}
	unmapped := []string{}
	for _, tf := range targets {
		if !covered[tf.Name] {
			unmapped = append(unmapped, tf.Name)
		}
	}
	return unmapped
}
