package transform

import (
	"regexp"
	"strconv"

	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/pkg/utils"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// resolvePlaceholders replaces every {fieldName} occurrence in logic with a
// literal built from the row's runtime value: strings are quoted with
// internal quotes escaped, numbers and booleans substitute as their textual
// form, and a missing or nil field becomes the literal text undefined. After
// this step the expression contains only literals and operators — no field
// name ever reaches the evaluator as an identifier.
func resolvePlaceholders(logic string, row model.Row) string {
	return placeholderRe.ReplaceAllStringFunc(logic, func(match string) string {
		field := match[1 : len(match)-1]
		value, ok := row[field]
		if !ok || value == nil {
			return "undefined"
		}
		switch v := value.(type) {
		case string:
			return strconv.Quote(v)
		case bool:
			return strconv.FormatBool(v)
		default:
			if text := utils.Stringify(v); text != "" {
				return text
			}
			// Non-scalar values have no literal form.
			return "undefined"
		}
	})
}
