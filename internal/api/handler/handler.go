package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jigardalal/databridge/internal/llm"
	"github.com/jigardalal/databridge/internal/mapping"
	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/internal/schema"
	"github.com/jigardalal/databridge/internal/store"
	"github.com/jigardalal/databridge/internal/validate"
	"github.com/jigardalal/databridge/pkg/utils"
)

// Handler carries every dependency the HTTP layer needs. One instance is
// built in main and shared across requests.
type Handler struct {
	Store     *store.Store
	Schemas   *schema.Registry
	Mapper    *mapping.Engine
	Validator *validate.Engine
	LLM       llm.Client
	Budget    *llm.Budget

	// Exports is optional; when nil, exports are streamed but not kept on
	// disk.
	Exports *utils.ExportDir
}

func New(st *store.Store, schemas *schema.Registry, mapper *mapping.Engine, validator *validate.Engine, client llm.Client, budget *llm.Budget) *Handler {
	return &Handler{
		Store:     st,
		Schemas:   schemas,
		Mapper:    mapper,
		Validator: validator,
		LLM:       client,
		Budget:    budget,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps a typed error to an HTTP status and the standard
// {"error": {"code", "message"}} envelope.
func writeDomainError(w http.ResponseWriter, err error) {
	code := model.CodeOf(err)

	var domainErr *model.Error
	message := err.Error()
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	writeJSON(w, statusForCode(code), map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeDomainError(w, model.NewError(model.CodeInvalidInput, "%s", message))
}

func statusForCode(code string) int {
	switch code {
	case model.CodeInvalidInput, model.CodeNoDataProvided, model.CodeUnknownSchemaType,
		model.CodeUnknownTransformation, model.CodeEmptyFile, model.CodeParseError:
		return http.StatusBadRequest
	case model.CodeDatasetNotFound:
		return http.StatusNotFound
	case model.CodeTransformationEvaluation:
		return http.StatusUnprocessableEntity
	case model.CodeBudgetExceeded:
		return http.StatusTooManyRequests
	case model.CodeLLMCallFailed, model.CodeMappingGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewError(model.CodeInvalidInput, "invalid JSON payload: %v", err)
	}
	return nil
}
