package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigardalal/databridge/internal/model"
)

func TestApply_Concatenate(t *testing.T) {
	value, err := Apply(model.TransformConcatenate, `{a} + " " + {b}`, model.Row{"a": "John", "b": "Doe"})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", value)
}

func TestApply_ConcatenateEscapesQuotes(t *testing.T) {
	value, err := Apply(model.TransformConcatenate, `{name} + "!"`, model.Row{"name": `O"Brien`})
	require.NoError(t, err)
	assert.Equal(t, `O"Brien!`, value)
}

func TestApply_ConcatenateUndefinedField(t *testing.T) {
	value, err := Apply(model.TransformConcatenate, `{a} + " " + {missing}`, model.Row{"a": "John"})
	require.NoError(t, err)
	assert.Equal(t, "John undefined", value)
}

func TestApply_Arithmetic(t *testing.T) {
	value, err := Apply(model.TransformArithmetic, `{x} * 2`, model.Row{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, float64(10), value)
}

func TestApply_ArithmeticFloats(t *testing.T) {
	value, err := Apply(model.TransformArithmetic, `({price} + {tax}) / 2`, model.Row{"price": 10.5, "tax": 1.5})
	require.NoError(t, err)
	assert.Equal(t, float64(6), value)
}

func TestApply_ArithmeticNonNumericResult(t *testing.T) {
	_, err := Apply(model.TransformArithmetic, `{name}`, model.Row{"name": "Jordan"})
	assert.Error(t, err)
}

func TestApply_Substring(t *testing.T) {
	value, err := Apply(model.TransformSubstring, `{code}.substring(0, 3)`, model.Row{"code": "ABC-123"})
	require.NoError(t, err)
	assert.Equal(t, "ABC", value)
}

func TestApply_SliceNegativeIndex(t *testing.T) {
	value, err := Apply(model.TransformSubstring, `{code}.slice(-3)`, model.Row{"code": "ABC-123"})
	require.NoError(t, err)
	assert.Equal(t, "123", value)
}

func TestApply_Conditional(t *testing.T) {
	value, err := Apply(model.TransformConditional, `{qty} > 10 ? "bulk" : "single"`, model.Row{"qty": 25})
	require.NoError(t, err)
	assert.Equal(t, "bulk", value)

	value, err = Apply(model.TransformConditional, `{qty} > 10 ? "bulk" : "single"`, model.Row{"qty": 3})
	require.NoError(t, err)
	assert.Equal(t, "single", value)
}

func TestApply_CustomChained(t *testing.T) {
	value, err := Apply(model.TransformCustom, `{name}.trim().toUpperCase()`, model.Row{"name": "  jordan  "})
	require.NoError(t, err)
	assert.Equal(t, "JORDAN", value)
}

func TestApply_CustomSplitIndex(t *testing.T) {
	value, err := Apply(model.TransformCustom, `{full}.split(" ")[0]`, model.Row{"full": "Jordan Walsh"})
	require.NoError(t, err)
	assert.Equal(t, "Jordan", value)
}

func TestApply_CustomLengthProperty(t *testing.T) {
	value, err := Apply(model.TransformCustom, `{name}.length`, model.Row{"name": "Jordan"})
	require.NoError(t, err)
	assert.Equal(t, float64(6), value)
}

func TestApply_CustomRounding(t *testing.T) {
	value, err := Apply(model.TransformCustom, `round({rate} * 100) / 100`, model.Row{"rate": 0.12345})
	require.NoError(t, err)
	assert.Equal(t, 0.12, value)
}

func TestApply_UnknownType(t *testing.T) {
	_, err := Apply("bogus", "", model.Row{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownTransformation))
}

func TestApply_DivisionByZero(t *testing.T) {
	_, err := Apply(model.TransformArithmetic, `{x} / {y}`, model.Row{"x": 1, "y": 0})
	assert.Error(t, err)
}

func TestApply_BooleanAndComparisonOperators(t *testing.T) {
	value, err := Apply(model.TransformConditional, `{a} == "x" && {n} >= 3 ? 1 : 0`, model.Row{"a": "x", "n": 5})
	require.NoError(t, err)
	assert.Equal(t, float64(1), value)

	value, err = Apply(model.TransformConditional, `!{active} ? "inactive" : "active"`, model.Row{"active": false})
	require.NoError(t, err)
	assert.Equal(t, "inactive", value)
}

// The sandbox boundary: nothing outside the closed grammar and function set
// may evaluate.
func TestApply_SandboxRejectsUnknownCode(t *testing.T) {
	cases := []string{
		`process.exit(1)`,
		`require("fs")`,
		`eval("1+1")`,
		`{x}.constructor`,
		`globalThis`,
		`while(true){}`,
		`{name}.repeat(999999)`,
	}
	for _, logic := range cases {
		_, err := Apply(model.TransformCustom, logic, model.Row{"x": 1, "name": "a"})
		assert.Error(t, err, "expected %q to be rejected", logic)
	}
}

func TestResolvePlaceholders(t *testing.T) {
	row := model.Row{"s": `say "hi"`, "n": 4.5, "b": true}
	resolved := resolvePlaceholders(`{s} + {n} + {b} + {gone}`, row)
	assert.Equal(t, `"say \"hi\"" + 4.5 + true + undefined`, resolved)
}

func TestMaterializeRows(t *testing.T) {
	mappings := []model.FieldMapping{
		{InputField: "Customer Name", OutputField: "name"},
		{InputField: "Email", OutputField: "email", TransformationType: model.TransformCustom, TransformationLogic: `{Email}.toLowerCase()`},
		{InputField: "Qty", OutputField: "total", TransformationType: model.TransformArithmetic, TransformationLogic: `{Qty} * {Price}`},
	}
	rows := []model.Row{
		{"Customer Name": "Jordan", "Email": "JORDAN@EXAMPLE.COM", "Qty": 2, "Price": 3.5},
		{"Customer Name": "Sam", "Email": "sam@example.com", "Qty": "oops", "Price": 1},
	}

	out, errs := MaterializeRows(mappings, rows)
	require.Len(t, out, 2)

	assert.Equal(t, "Jordan", out[0]["name"])
	assert.Equal(t, "jordan@example.com", out[0]["email"])
	assert.Equal(t, float64(7), out[0]["total"])

	// The bad row keeps its other fields; only the failing one is nulled.
	assert.Equal(t, "Sam", out[1]["name"])
	assert.Nil(t, out[1]["total"])
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Row)
	assert.Equal(t, "total", errs[0].Field)
}

func TestMaterializeRows_ManualFieldWithoutLogic(t *testing.T) {
	mappings := []model.FieldMapping{
		{InputField: model.ManualInputField, OutputField: "source", TransformationType: model.TransformCustom, TransformationLogic: `"import"`},
		{InputField: model.ManualInputField, OutputField: "empty"},
	}
	out, errs := MaterializeRows(mappings, []model.Row{{"a": 1}})
	require.Empty(t, errs)
	assert.Equal(t, "import", out[0]["source"])
	_, present := out[0]["empty"]
	assert.False(t, present, "manual field with no logic produces nothing")
}

func TestPreview(t *testing.T) {
	rows := []model.Row{{"x": 1}, {"x": 2}, {"x": 3}}
	values, errs, err := Preview(model.TransformArithmetic, `{x} * 10`, rows, 2)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, []interface{}{float64(10), float64(20)}, values)
}

func TestSniffTransformationType(t *testing.T) {
	assert.Equal(t, model.TransformConcatenate, SniffTransformationType(`{first} + " " + {last}`))
	assert.Equal(t, model.TransformSubstring, SniffTransformationType(`value.substring(0, 5)`))
	assert.Equal(t, model.TransformArithmetic, SniffTransformationType(`price * qty`))
	assert.Equal(t, model.TransformConditional, SniffTransformationType(`qty > 1 ? a : b`))
	assert.Equal(t, model.TransformCustom, SniffTransformationType(`value.toUpperCase()`))
}

func TestCoerceToFieldType(t *testing.T) {
	assert.Equal(t, float64(42), CoerceToFieldType("42", model.FieldTypeNumber))
	assert.Equal(t, true, CoerceToFieldType("true", model.FieldTypeBoolean))
	assert.Equal(t, "3.5", CoerceToFieldType(3.5, model.FieldTypeString))
	assert.Nil(t, CoerceToFieldType(nil, model.FieldTypeNumber))
	// Unconvertible values pass through for validation to flag.
	assert.Equal(t, "not a number", CoerceToFieldType("not a number", model.FieldTypeNumber))
}
