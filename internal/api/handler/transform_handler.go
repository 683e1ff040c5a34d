package handler

import (
	"net/http"

	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/internal/transform"
)

type applyTransformationRequest struct {
	TransformationType model.TransformationType `json:"transformation_type"`
	Logic              string                   `json:"logic"`
	Rows               []model.Row              `json:"rows"`
	Limit              int                      `json:"limit,omitempty"`
}

// ApplyTransformation evaluates a transformation against sample rows
// @Summary Apply a transformation
// @Description Evaluate a transformation formula row by row; evaluation failures are reported per row without aborting the batch
// @Tags transformations
// @Accept json
// @Produce json
// @Param request body applyTransformationRequest true "Transformation and sample rows"
// @Success 200 {object} map[string]interface{} "Per-row values and errors"
// @Failure 400 {object} map[string]interface{} "Invalid request or unknown transformation type"
// @Router /transformations/apply [post]
func (h *Handler) ApplyTransformation(w http.ResponseWriter, r *http.Request) {
	var req applyTransformationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if len(req.Rows) == 0 {
		writeDomainError(w, model.ErrNoDataProvided)
		return
	}

	values, rowErrors, err := transform.Preview(req.TransformationType, req.Logic, req.Rows, req.Limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rowErrors == nil {
		rowErrors = []transform.RowError{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"values":      values,
		"errors":      rowErrors,
		"error_count": len(rowErrors),
	})
}

type generateFormulaRequest struct {
	Description string      `json:"description"`
	InputFields []string    `json:"input_fields"`
	OutputField string      `json:"output_field"`
	SampleData  []model.Row `json:"sample_data,omitempty"`
}

// GenerateFormula drafts a transformation formula from a description
// @Summary Generate a transformation formula
// @Description Produce a {fieldName}-templated formula from a natural-language description of the desired output
// @Tags transformations
// @Accept json
// @Produce json
// @Param request body generateFormulaRequest true "Description and field context"
// @Success 200 {object} transform.GeneratedFormula "Generated formula"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 502 {object} map[string]interface{} "Formula generation failed"
// @Router /transformations/formula [post]
func (h *Handler) GenerateFormula(w http.ResponseWriter, r *http.Request) {
	var req generateFormulaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := transform.GenerateFormula(r.Context(), h.LLM, req.Description, req.InputFields, req.OutputField, req.SampleData)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
