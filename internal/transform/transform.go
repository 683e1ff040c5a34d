package transform

import (
	"fmt"

	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/pkg/utils"
)

// Apply runs a single transformation against one row: placeholders are
// resolved to literals, then the expression is evaluated by the sandboxed
// interpreter. User-supplied logic can only ever reach the closed grammar
// and function set; it is never handed to a general-purpose evaluator.
func Apply(transformType model.TransformationType, logic string, row model.Row) (interface{}, error) {
	switch transformType {
	case model.TransformConcatenate, model.TransformSubstring, model.TransformArithmetic,
		model.TransformConditional, model.TransformCustom, model.TransformAI:
	default:
		return nil, model.NewError(model.CodeUnknownTransformation, "unknown transformation type: %s", transformType)
	}

	resolved := resolvePlaceholders(logic, row)
	ast, err := parse(resolved)
	if err != nil {
		return nil, model.NewError(model.CodeTransformationEvaluation, "failed to parse expression: %v", err)
	}
	value, err := evaluate(ast)
	if err != nil {
		return nil, model.NewError(model.CodeTransformationEvaluation, "failed to evaluate expression: %v", err)
	}

	switch transformType {
	case model.TransformConcatenate:
		return concatText(value), nil
	case model.TransformArithmetic:
		f, err := asNumber(value)
		if err != nil {
			return nil, model.NewError(model.CodeTransformationEvaluation, "arithmetic expression did not produce a number: %v", err)
		}
		return f, nil
	default:
		return value, nil
	}
}

// RowError records one per-row evaluation failure during materialization.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MaterializeRows produces the output dataset: one output row per input row,
// with each mapped field either copied from its input column or computed by
// its transformation. Evaluation errors null the field and are collected;
// one bad row never aborts the batch.
func MaterializeRows(mappings []model.FieldMapping, rows []model.Row) ([]model.Row, []RowError) {
	out := make([]model.Row, 0, len(rows))
	var errs []RowError

	for i, row := range rows {
		outRow := make(model.Row)
		for _, m := range mappings {
			if m.OutputField == "" {
				continue
			}
			if m.TransformationType == model.TransformNone || m.TransformationType == "" || m.TransformationLogic == "" {
				if m.InputField != model.ManualInputField {
					outRow[m.OutputField] = row[m.InputField]
				}
				continue
			}
			value, err := Apply(m.TransformationType, m.TransformationLogic, row)
			if err != nil {
				errs = append(errs, RowError{Row: i, Field: m.OutputField, Message: err.Error()})
				outRow[m.OutputField] = nil
				continue
			}
			outRow[m.OutputField] = value
		}
		out = append(out, outRow)
	}

	if len(errs) > 0 {
		fmt.Printf("⚠️ Materialization: %d field evaluation errors across %d rows\n", len(errs), len(rows))
	}
	return out, errs
}

// Preview evaluates one transformation against a handful of rows so the UI
// can show the effect before the user commits it.
func Preview(transformType model.TransformationType, logic string, rows []model.Row, limit int) ([]interface{}, []RowError, error) {
	switch transformType {
	case model.TransformConcatenate, model.TransformSubstring, model.TransformArithmetic,
		model.TransformConditional, model.TransformCustom, model.TransformAI:
	default:
		return nil, nil, model.NewError(model.CodeUnknownTransformation, "unknown transformation type: %s", transformType)
	}
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	values := make([]interface{}, 0, limit)
	var errs []RowError
	for i := 0; i < limit; i++ {
		value, err := Apply(transformType, logic, rows[i])
		if err != nil {
			errs = append(errs, RowError{Row: i, Message: err.Error()})
			values = append(values, nil)
			continue
		}
		values = append(values, value)
	}
	return values, errs, nil
}

// CoerceToFieldType best-effort converts a materialized value to the target
// field's declared type; values that do not convert are returned unchanged
// for the validation engine to flag.
func CoerceToFieldType(value interface{}, fieldType model.FieldType) interface{} {
	if value == nil {
		return nil
	}
	switch fieldType {
	case model.FieldTypeNumber:
		if _, ok := value.(float64); ok {
			return value
		}
		if s, ok := value.(string); ok {
			if f, err := asNumber(s); err == nil {
				return f
			}
		}
		if n := utils.Numeric(value); n != 0 {
			return n
		}
		return value
	case model.FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
			return v
		case string:
			if v == "true" {
				return true
			}
			if v == "false" {
				return false
			}
		}
		return value
	case model.FieldTypeString:
		if s, ok := value.(string); ok {
			return s
		}
		return utils.Stringify(value)
	default:
		return value
	}
}
