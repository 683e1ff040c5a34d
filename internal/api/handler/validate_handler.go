package handler

import (
	"net/http"

	"github.com/jigardalal/databridge/internal/model"
)

type validateRequest struct {
	Records    []model.Row `json:"records"`
	SchemaType string      `json:"schema_type"`
}

// ValidateData validates records against a schema category
// @Summary Validate records
// @Description Check required fields, value formats, type shapes and duplicates against a schema category
// @Tags validation
// @Accept json
// @Produce json
// @Param request body validateRequest true "Records and schema category"
// @Success 200 {object} model.ValidationReport "Validation report"
// @Failure 400 {object} map[string]interface{} "No data or unknown schema type"
// @Router /validate [post]
func (h *Handler) ValidateData(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	report, err := h.Validator.ValidateData(req.Records, req.SchemaType)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type suggestFixesRequest struct {
	Errors []model.ValidationError `json:"errors"`
}

// SuggestFixes proposes fixes for validation errors
// @Summary Suggest fixes
// @Description Ask the LLM for fix suggestions for a batch of validation errors; an empty batch short-circuits without any LLM call
// @Tags validation
// @Accept json
// @Produce json
// @Param request body suggestFixesRequest true "Validation errors"
// @Success 200 {object} map[string]interface{} "Fix suggestions"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 502 {object} map[string]interface{} "Suggestion generation failed"
// @Router /validate/fixes [post]
func (h *Handler) SuggestFixes(w http.ResponseWriter, r *http.Request) {
	var req suggestFixesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}

	suggestions, err := h.Validator.SuggestFixes(r.Context(), req.Errors)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []model.FixSuggestion{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
