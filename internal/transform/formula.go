package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jigardalal/databridge/internal/llm"
	"github.com/jigardalal/databridge/internal/model"
)

// GeneratedFormula is the result of asking the LLM to draft a transformation
// from a natural-language description.
type GeneratedFormula struct {
	Formula            string                   `json:"formula"`
	TransformationType model.TransformationType `json:"transformation_type"`
	Explanation        string                   `json:"explanation"`
}

// GenerateFormula asks the external capability for a {fieldName}-templated
// formula matching the description, then classifies it heuristically. The
// classification is a hint for the UI; the user may override it.
func GenerateFormula(ctx context.Context, client llm.Client, description string, inputFields []string, outputField string, sampleRows []model.Row) (GeneratedFormula, error) {
	if strings.TrimSpace(description) == "" {
		return GeneratedFormula{}, model.NewError(model.CodeInvalidInput, "description is required")
	}
	if len(inputFields) == 0 {
		return GeneratedFormula{}, model.NewError(model.CodeInvalidInput, "input fields are required")
	}

	samples := sampleRows
	if len(samples) > 3 {
		samples = samples[:3]
	}
	sampleJSON, err := json.Marshal(samples)
	if err != nil {
		return GeneratedFormula{}, fmt.Errorf("failed to encode sample rows: %w", err)
	}

	system := "You write transformation formulas for a spreadsheet onboarding tool. " +
		"Formulas reference input columns as {fieldName} placeholders and use a small expression language: " +
		"string concatenation with +, arithmetic with + - * / %, comparisons, ternary cond ? a : b, and the " +
		"string methods substring, slice, toUpperCase, toLowerCase, trim, replace, split, indexOf, concat. " +
		"Respond with JSON only."

	var b strings.Builder
	fmt.Fprintf(&b, "Write a formula for the output field %q.\n\n", outputField)
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	fmt.Fprintf(&b, "Available input columns: %s\n\n", strings.Join(inputFields, ", "))
	fmt.Fprintf(&b, "Sample rows: %s\n", sampleJSON)
	b.WriteString("\nRespond with a JSON object: {\"formula\": \"...\", \"explanation\": \"...\"}")

	comp, err := client.Complete(ctx, system, b.String(), llm.Options{JSONMode: true, Temperature: 0.2})
	if err != nil {
		return GeneratedFormula{}, err
	}

	var parsed struct {
		Formula     string `json:"formula"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(comp.Content), &parsed); err != nil {
		return GeneratedFormula{}, model.NewError(model.CodeMappingGenerationFailed, "llm response is not valid formula JSON: %v", err)
	}
	if strings.TrimSpace(parsed.Formula) == "" {
		return GeneratedFormula{}, model.NewError(model.CodeMappingGenerationFailed, "llm returned an empty formula")
	}

	return GeneratedFormula{
		Formula:            parsed.Formula,
		TransformationType: SniffTransformationType(parsed.Formula),
		Explanation:        parsed.Explanation,
	}, nil
}

// SniffTransformationType guesses a formula's transformation type by keyword
// and operator, checked in fixed order. Best-effort only.
func SniffTransformationType(formula string) model.TransformationType {
	lower := strings.ToLower(formula)
	switch {
	case strings.Contains(formula, "+") || strings.Contains(formula, "{"):
		return model.TransformConcatenate
	case strings.Contains(lower, "substring") || strings.Contains(lower, "slice"):
		return model.TransformSubstring
	case strings.ContainsAny(formula, "*/-%"):
		return model.TransformArithmetic
	case strings.Contains(formula, "?") || strings.Contains(lower, "if ") || strings.Contains(lower, "else"):
		return model.TransformConditional
	default:
		return model.TransformCustom
	}
}
