package model

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes. Handlers map these to HTTP statuses;
// clients switch on the code, never on the message text.
const (
	CodeInvalidInput             = "invalid_input"
	CodeNoDataProvided           = "no_data_provided"
	CodeUnknownSchemaType        = "unknown_schema_type"
	CodeDatasetNotFound          = "dataset_not_found"
	CodeMappingGenerationFailed  = "mapping_generation_failed"
	CodeLLMCallFailed            = "llm_call_failed"
	CodeUnknownTransformation    = "unknown_transformation_type"
	CodeTransformationEvaluation = "transformation_evaluation_error"
	CodeEmptyFile                = "empty_file"
	CodeParseError               = "parse_error"
	CodeBudgetExceeded           = "budget_exceeded"
)

// Error is a typed domain error with a stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches two domain errors by code so sentinel comparisons work with
// wrapped errors.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewError builds a domain error with a formatted message.
func NewError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput            = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNoDataProvided          = &Error{Code: CodeNoDataProvided, Message: "no data provided"}
	ErrUnknownSchemaType       = &Error{Code: CodeUnknownSchemaType, Message: "unknown schema type"}
	ErrDatasetNotFound         = &Error{Code: CodeDatasetNotFound, Message: "dataset not found"}
	ErrMappingGenerationFailed = &Error{Code: CodeMappingGenerationFailed, Message: "mapping generation failed"}
	ErrLLMCallFailed           = &Error{Code: CodeLLMCallFailed, Message: "llm call failed"}
	ErrUnknownTransformation   = &Error{Code: CodeUnknownTransformation, Message: "unknown transformation type"}
	ErrEmptyFile               = &Error{Code: CodeEmptyFile, Message: "file contains no data rows"}
	ErrParseError              = &Error{Code: CodeParseError, Message: "failed to parse file"}
	ErrBudgetExceeded          = &Error{Code: CodeBudgetExceeded, Message: "daily token budget exceeded"}
)

// CodeOf extracts the stable code from err, or "internal_error" when err is
// not a domain error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
