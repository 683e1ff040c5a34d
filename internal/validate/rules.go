package validate

import "regexp"

// formatRule is a regex-backed format check for a semantically known field,
// with a suggestion describing the expected shape.
type formatRule struct {
	pattern    *regexp.Regexp
	message    string
	suggestion string
}

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9 ().\-]{7,20}$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{1,2}/\d{1,2}/\d{4}$`)
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// formatRules keys on field name; fields not listed here get no format
// check. Target schemas use these conventional names, so mapped output
// validates directly.
var formatRules = map[string]formatRule{
	"email": {
		pattern:    emailRe,
		message:    "value is not a valid email address",
		suggestion: "Expected format: user@example.com",
	},
	"phone": {
		pattern:    phoneRe,
		message:    "value is not a valid phone number",
		suggestion: "Expected format: +1 (555) 123-4567 or 555-123-4567",
	},
	"zip": {
		pattern:    zipRe,
		message:    "value is not a valid postal code",
		suggestion: "Expected format: 12345 or 12345-6789",
	},
	"created_date": {
		pattern:    dateRe,
		message:    "value is not a valid date",
		suggestion: "Expected format: YYYY-MM-DD or MM/DD/YYYY",
	},
	"order_date": {
		pattern:    dateRe,
		message:    "value is not a valid date",
		suggestion: "Expected format: YYYY-MM-DD or MM/DD/YYYY",
	},
	"effective_date": {
		pattern:    dateRe,
		message:    "value is not a valid date",
		suggestion: "Expected format: YYYY-MM-DD or MM/DD/YYYY",
	},
	"license_expiry": {
		pattern:    dateRe,
		message:    "value is not a valid date",
		suggestion: "Expected format: YYYY-MM-DD or MM/DD/YYYY",
	},
}

// uniqueFields lists per-category fields conventionally expected to be
// unique across a batch.
var uniqueFields = map[string][]string{
	"customers": {"id", "email"},
	"drivers":   {"id", "license_number"},
	"rates":     {"id"},
	"orders":    {"id"},
}

// uniqueFieldsFor falls back to "id" for categories without an explicit
// entry.
func uniqueFieldsFor(category string) []string {
	if fields, ok := uniqueFields[category]; ok {
		return fields
	}
	return []string{"id"}
}
