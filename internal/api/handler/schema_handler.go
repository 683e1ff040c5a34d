package handler

import (
	"net/http"
	"strings"
)

const schemasPrefix = "/api/v1/schemas/"

// ListSchemas retrieves the available schema categories
// @Summary List schema categories
// @Description Get the names of all registered target schema categories
// @Tags schemas
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Schema categories"
// @Router /schemas [get]
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	categories := h.Schemas.Categories()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schemas": categories,
		"count":   len(categories),
	})
}

// GetSchema retrieves the target fields of one schema category
// @Summary Get schema
// @Description Get the target field definitions for a schema category
// @Tags schemas
// @Accept json
// @Produce json
// @Param type path string true "Schema category"
// @Success 200 {object} map[string]interface{} "Target fields"
// @Failure 400 {object} map[string]interface{} "Invalid or unknown schema category"
// @Router /schemas/{type} [get]
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if !strings.HasPrefix(path, schemasPrefix) {
		writeBadRequest(w, "invalid path")
		return
	}

	category := path[len(schemasPrefix):]
	if category == "" {
		writeBadRequest(w, "schema category is required")
		return
	}

	fields, err := h.Schemas.TargetFields(category)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schema_type":   category,
		"target_fields": fields,
	})
}
