package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jigardalal/databridge/internal/model"
)

// mapFieldsPrompts builds the system and user prompts for a field mapping
// request. The response contract is strict JSON; anything else is rejected
// by the caller.
func mapFieldsPrompts(inputFields []string, targetFields []model.TargetField) (string, string) {
	system := "You are a data onboarding assistant. You map spreadsheet column names onto a fixed target schema. " +
		"Match columns by semantic meaning, common abbreviations and context, not just exact spelling. " +
		"Respond with JSON only, in the exact shape requested."

	var b strings.Builder
	b.WriteString("Map each input column to the best target field, or to an empty output_field when nothing fits.\n\n")
	b.WriteString("Input columns:\n")
	for _, f := range inputFields {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\nTarget schema fields:\n")
	for _, tf := range targetFields {
		required := "optional"
		if tf.Required {
			required = "required"
		}
		fmt.Fprintf(&b, "- %s (%s, %s): %s\n", tf.Name, tf.Type, required, tf.Description)
	}
	b.WriteString(`
Respond with a JSON object of this exact shape:
{
  "mappings": [
    {"input_field": "...", "output_field": "...", "confidence": 0.0, "explanation": "..."}
  ],
  "unmapped_fields": ["..."],
  "overall_confidence": 0.0
}
Every input column must appear exactly once in mappings. Confidence is a number between 0 and 1.`)
	return system, b.String()
}

// classifyPrompts builds the prompts for coarse tab-content classification.
func classifyPrompts(headers []string, samples []model.Row, possibleTypes []string) (string, string, error) {
	sampleJSON, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to encode sample rows: %w", err)
	}

	system := "You are a data onboarding assistant. You classify what kind of business data a spreadsheet tab contains. " +
		"Respond with JSON only."

	var b strings.Builder
	fmt.Fprintf(&b, "Classify this tab as one of: %s\n\n", strings.Join(possibleTypes, ", "))
	fmt.Fprintf(&b, "Column headers: %s\n\n", strings.Join(headers, ", "))
	fmt.Fprintf(&b, "Sample rows:\n%s\n", sampleJSON)
	b.WriteString(`
Respond with a JSON object of this exact shape:
{
  "classified_type": "...",
  "confidence_score": 0.0,
  "reasoning": "...",
  "suggested_mappings": [
    {"input_field": "...", "output_field": "...", "confidence": 0.0}
  ]
}`)
	return system, b.String(), nil
}
