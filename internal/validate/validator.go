package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jigardalal/databridge/internal/llm"
	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/pkg/utils"
)

// SchemaSource resolves a schema type to its target field definitions.
// The schema registry satisfies this.
type SchemaSource interface {
	TargetFields(category string) ([]model.TargetField, error)
}

// Engine checks mapped or raw records against schema constraints and
// produces a structured error report.
type Engine struct {
	schemas SchemaSource
	llm     llm.Client // optional, used only by SuggestFixes
}

// NewEngine builds a validation engine. client may be nil when fix
// suggestions are not needed.
func NewEngine(schemas SchemaSource, client llm.Client) *Engine {
	return &Engine{schemas: schemas, llm: client}
}

// ValidateData validates a batch of records against the named schema type.
func (e *Engine) ValidateData(records []model.Row, schemaType string) (model.ValidationReport, error) {
	if len(records) == 0 {
		return model.ValidationReport{}, model.NewError(model.CodeNoDataProvided, "no records to validate")
	}

	targets, err := e.schemas.TargetFields(schemaType)
	if err != nil {
		return model.ValidationReport{}, err
	}

	var errs []model.ValidationError

	// Per-record checks: required presence, format, type shape.
	for i, rec := range records {
		for _, tf := range targets {
			errs = append(errs, checkField(tf, rec, i)...)
		}
	}

	// Batch-wide duplicate detection: the first occurrence of a value is
	// clean, every later occurrence is flagged.
	for _, field := range uniqueFieldsFor(schemaType) {
		seen := make(map[string]int)
		for i, rec := range records {
			value, ok := rec[field]
			if !ok || value == nil {
				continue
			}
			key := utils.Stringify(value)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				errs = append(errs, model.ValidationError{
					Field:     field,
					Type:      model.ValidationDuplicateValue,
					Message:   fmt.Sprintf("duplicate value %q for field %s (first seen at record %d)", key, field, seen[key]),
					Severity:  model.SeverityMedium,
					RecordIdx: i,
				})
				continue
			}
			seen[key] = i
		}
	}

	report := model.ValidationReport{
		Errors: errs,
		Stats:  buildStats(len(records), errs),
	}
	report.OverallConfidence = confidenceScore(len(records), len(targets), len(errs))
	return report, nil
}

// ValidateField validates a single field value against the schema.
func (e *Engine) ValidateField(fieldName string, value interface{}, schemaType string) ([]model.ValidationError, error) {
	targets, err := e.schemas.TargetFields(schemaType)
	if err != nil {
		return nil, err
	}
	for _, tf := range targets {
		if tf.Name == fieldName {
			rec := model.Row{}
			if value != nil {
				rec[fieldName] = value
			}
			return checkField(tf, rec, 0), nil
		}
	}
	return nil, model.NewError(model.CodeInvalidInput, "field %s is not part of schema %s", fieldName, schemaType)
}

func checkField(tf model.TargetField, rec model.Row, recordIdx int) []model.ValidationError {
	var errs []model.ValidationError

	value, present := rec[tf.Name]
	missing := !present || value == nil || utils.Stringify(value) == ""

	if missing {
		if tf.Required {
			errs = append(errs, model.ValidationError{
				Field:     tf.Name,
				Type:      model.ValidationMissingRequired,
				Message:   fmt.Sprintf("required field %s is missing", tf.Name),
				Severity:  model.SeverityHigh,
				RecordIdx: recordIdx,
			})
		}
		return errs
	}

	if rule, ok := formatRules[tf.Name]; ok {
		if text, isStr := value.(string); isStr && !rule.pattern.MatchString(strings.TrimSpace(text)) {
			errs = append(errs, model.ValidationError{
				Field:      tf.Name,
				Type:       model.ValidationInvalidFormat,
				Message:    fmt.Sprintf("%s: %s", tf.Name, rule.message),
				Severity:   model.SeverityMedium,
				Suggestion: rule.suggestion,
				RecordIdx:  recordIdx,
			})
		}
	}

	// Declared-type shape check for numbers and booleans.
	switch tf.Type {
	case model.FieldTypeNumber:
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			if _, isStr := value.(string); !isStr || !isNumericString(value.(string)) {
				errs = append(errs, model.ValidationError{
					Field:      tf.Name,
					Type:       model.ValidationInconsistentValue,
					Message:    fmt.Sprintf("%s should be a number, got %T", tf.Name, value),
					Severity:   model.SeverityLow,
					Suggestion: "Expected a numeric value",
					RecordIdx:  recordIdx,
				})
			}
		}
	case model.FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
		case string:
			lower := strings.ToLower(strings.TrimSpace(v))
			if lower != "true" && lower != "false" && lower != "yes" && lower != "no" {
				errs = append(errs, model.ValidationError{
					Field:      tf.Name,
					Type:       model.ValidationInconsistentValue,
					Message:    fmt.Sprintf("%s should be a boolean, got %q", tf.Name, v),
					Severity:   model.SeverityLow,
					Suggestion: "Expected true/false or yes/no",
					RecordIdx:  recordIdx,
				})
			}
		default:
			errs = append(errs, model.ValidationError{
				Field:     tf.Name,
				Type:      model.ValidationInconsistentValue,
				Message:   fmt.Sprintf("%s should be a boolean, got %T", tf.Name, value),
				Severity:  model.SeverityLow,
				RecordIdx: recordIdx,
			})
		}
	}

	return errs
}

func isNumericString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	var f float64
	_, err := fmt.Sscanf(s, "%g", &f)
	return err == nil
}

func buildStats(totalRecords int, errs []model.ValidationError) model.ValidationStats {
	stats := model.ValidationStats{
		TotalRecords:   totalRecords,
		ErrorCount:     len(errs),
		FieldErrors:    make(map[string]int),
		SeverityCounts: make(map[int]int),
	}
	for _, e := range errs {
		stats.FieldErrors[e.Field]++
		stats.SeverityCounts[e.Severity]++
	}
	return stats
}

// confidenceScore maps error density to [0,1]: 1 with no errors, strictly
// decreasing as errors accumulate, floored at 0. The exact formula is an
// implementation choice; only the bounds and monotonicity are contractual.
func confidenceScore(records, fieldCount, errorCount int) float64 {
	if errorCount == 0 {
		return 1
	}
	cells := records * fieldCount
	if cells <= 0 {
		cells = 1
	}
	return utils.Clamp01(1 - float64(errorCount)/float64(cells))
}

// SuggestFixes drafts a remediation suggestion for each error via the LLM.
// An empty error list short-circuits without any external call.
func (e *Engine) SuggestFixes(ctx context.Context, errs []model.ValidationError) ([]model.FixSuggestion, error) {
	if len(errs) == 0 {
		return []model.FixSuggestion{}, nil
	}
	if e.llm == nil {
		return nil, model.NewError(model.CodeLLMCallFailed, "no llm capability configured for fix suggestions")
	}

	// Cap the payload; a pathological batch should not produce a huge prompt.
	capped := errs
	if len(capped) > 25 {
		capped = capped[:25]
	}
	payload, err := json.Marshal(capped)
	if err != nil {
		return nil, err
	}

	system := "You help users fix data-quality problems in uploaded spreadsheets. " +
		"For each validation error, draft one short, actionable fix. Respond with JSON only."
	user := fmt.Sprintf(`Validation errors:
%s

Respond with a JSON object: {"fixes": [{"field": "...", "error_type": "...", "suggestion": "..."}]}`, payload)

	comp, err := e.llm.Complete(ctx, system, user, llm.Options{JSONMode: true, Temperature: 0.3})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Fixes []model.FixSuggestion `json:"fixes"`
	}
	if err := json.Unmarshal([]byte(comp.Content), &parsed); err != nil {
		return nil, model.NewError(model.CodeLLMCallFailed, "failed to parse fix suggestions: %v", err)
	}
	if parsed.Fixes == nil {
		parsed.Fixes = []model.FixSuggestion{}
	}
	return parsed.Fixes, nil
}
