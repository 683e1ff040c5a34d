package handler

import (
	"net/http"

	"github.com/jigardalal/databridge/internal/model"
)

type mapFieldsRequest struct {
	InputFields  []string            `json:"input_fields"`
	DataCategory string              `json:"data_category"`
	TargetFields []model.TargetField `json:"target_fields,omitempty"`
}

// MapFields generates field mappings for a set of input columns
// @Summary Generate field mappings
// @Description Map input spreadsheet columns onto a target schema category, using the cache when an identical header set was mapped before
// @Tags mappings
// @Accept json
// @Produce json
// @Param request body mapFieldsRequest true "Input fields and target category"
// @Success 200 {object} model.MappingResult "Mapping result"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 502 {object} map[string]interface{} "Mapping generation failed"
// @Router /mappings [post]
func (h *Handler) MapFields(w http.ResponseWriter, r *http.Request) {
	var req mapFieldsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if len(req.InputFields) == 0 {
		writeBadRequest(w, "input_fields is required")
		return
	}
	if req.DataCategory == "" {
		writeBadRequest(w, "data_category is required")
		return
	}

	// Callers may supply their own target fields (custom schemas); otherwise
	// the registry's category definition is used.
	targets := req.TargetFields
	if len(targets) == 0 {
		var err error
		targets, err = h.Schemas.TargetFields(req.DataCategory)
		if err != nil {
			writeDomainError(w, err)
			return
		}
	}

	result, err := h.Mapper.MapFields(r.Context(), req.DataCategory, req.InputFields, targets)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type classifyRequest struct {
	Rows          []model.Row `json:"rows"`
	PossibleTypes []string    `json:"possible_types,omitempty"`
}

// ClassifyTab classifies tabular content into a data category
// @Summary Classify tab content
// @Description Guess which data category a set of sample rows belongs to
// @Tags mappings
// @Accept json
// @Produce json
// @Param request body classifyRequest true "Sample rows and candidate types"
// @Success 200 {object} model.ClassificationResult "Classification result"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 502 {object} map[string]interface{} "Classification failed"
// @Router /mappings/classify [post]
func (h *Handler) ClassifyTab(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if len(req.Rows) == 0 {
		writeDomainError(w, model.ErrNoDataProvided)
		return
	}

	possibleTypes := req.PossibleTypes
	if len(possibleTypes) == 0 {
		possibleTypes = h.Schemas.Categories()
	}

	result, err := h.Mapper.ClassifyTabContent(r.Context(), req.Rows, possibleTypes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
