package model

// ValidationErrorType enumerates the kinds of data-quality problems the
// validation engine reports.
type ValidationErrorType string

const (
	ValidationMissingRequired   ValidationErrorType = "missing_required"
	ValidationInvalidFormat     ValidationErrorType = "invalid_format"
	ValidationDuplicateValue    ValidationErrorType = "duplicate_value"
	ValidationInconsistentValue ValidationErrorType = "inconsistent_value"
)

// Severity levels: 1 = low, 2 = medium, 3 = high.
const (
	SeverityLow    = 1
	SeverityMedium = 2
	SeverityHigh   = 3
)

// ValidationError is a single data-quality finding.
type ValidationError struct {
	Field      string              `json:"field"`
	Type       ValidationErrorType `json:"type"`
	Message    string              `json:"message"`
	Severity   int                 `json:"severity"`
	Suggestion string              `json:"suggestion,omitempty"`
	RecordIdx  int                 `json:"record_index"`
}

// ValidationStats aggregates findings over a batch.
type ValidationStats struct {
	TotalRecords   int            `json:"total_records"`
	ErrorCount     int            `json:"error_count"`
	FieldErrors    map[string]int `json:"field_errors"`
	SeverityCounts map[int]int    `json:"severity_counts"`
}

// ValidationReport is the result of validating a batch of records.
type ValidationReport struct {
	Errors            []ValidationError `json:"errors"`
	Stats             ValidationStats   `json:"stats"`
	OverallConfidence float64           `json:"overall_confidence"`
}

// FixSuggestion is a drafted remediation for one validation error.
type FixSuggestion struct {
	Field      string `json:"field"`
	ErrorType  string `json:"error_type"`
	Suggestion string `json:"suggestion"`
}
