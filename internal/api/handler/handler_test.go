package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigardalal/databridge/internal/api"
	"github.com/jigardalal/databridge/internal/api/handler"
	"github.com/jigardalal/databridge/internal/llm"
	"github.com/jigardalal/databridge/internal/mapping"
	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/internal/schema"
	"github.com/jigardalal/databridge/internal/store"
	"github.com/jigardalal/databridge/internal/validate"
	"github.com/jigardalal/databridge/pkg/utils"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Complete(ctx context.Context, system, user string, opts llm.Options) (llm.Completion, error) {
	if s.err != nil {
		return llm.Completion{}, s.err
	}
	return llm.Completion{Content: s.response, Model: "stub"}, nil
}

func newTestHandler(t *testing.T, client llm.Client) *handler.Handler {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	registry := schema.NewRegistry()
	mapper := mapping.NewEngine(client, st, st)
	validator := validate.NewEngine(registry, client)
	budget := llm.NewBudget(1_000_000)

	return handler.New(st, registry, mapper, validator, client, budget)
}

func newTestRouter(t *testing.T, client llm.Client) http.Handler {
	t.Helper()
	return api.NewRouter(newTestHandler(t, client))
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]["code"]
}

func TestMapFields(t *testing.T) {
	client := &stubLLM{response: `{
		"mappings": [
			{"input_field": "Customer Name", "output_field": "name", "confidence": 0.95},
			{"input_field": "Email Address", "output_field": "email", "confidence": 0.9}
		],
		"unmapped_fields": [],
		"overall_confidence": 0.92
	}`}
	r := newTestRouter(t, client)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"input_fields":  []string{"Customer Name", "Email Address"},
		"data_category": "customers",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.MappingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Mappings, 2)
	assert.Equal(t, "name", result.Mappings[0].OutputField)
	assert.InDelta(t, 0.925, result.OverallConfidence, 1e-9)
}

func TestMapFieldsRejectsEmptyInput(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"data_category": "customers",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeInvalidInput, errorCode(t, rec))
}

func TestMapFieldsUnknownCategory(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"input_fields":  []string{"a"},
		"data_category": "unicorns",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeUnknownSchemaType, errorCode(t, rec))
}

func TestMapFieldsLLMFailureMapsToBadGateway(t *testing.T) {
	r := newTestRouter(t, &stubLLM{err: model.ErrLLMCallFailed})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"input_fields":  []string{"a"},
		"data_category": "customers",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, model.CodeLLMCallFailed, errorCode(t, rec))
}

func TestClassifyTab(t *testing.T) {
	client := &stubLLM{response: `{
		"classified_type": "drivers",
		"confidence_score": 0.88,
		"reasoning": "license numbers present"
	}`}
	r := newTestRouter(t, client)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/mappings/classify", map[string]interface{}{
		"rows": []model.Row{{"License Number": "D123", "Name": "Sam"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.ClassificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "drivers", result.ClassifiedType)
}

func TestApplyTransformation(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/transformations/apply", map[string]interface{}{
		"transformation_type": "concatenate",
		"logic":               `{first} + " " + {last}`,
		"rows": []model.Row{
			{"first": "John", "last": "Doe"},
			{"first": "Jane", "last": "Roe"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Values     []interface{} `json:"values"`
		ErrorCount int           `json:"error_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"John Doe", "Jane Roe"}, body.Values)
	assert.Zero(t, body.ErrorCount)
}

func TestApplyTransformationUnknownType(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/transformations/apply", map[string]interface{}{
		"transformation_type": "bogus",
		"logic":               "{x}",
		"rows":                []model.Row{{"x": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeUnknownTransformation, errorCode(t, rec))
}

func TestApplyTransformationReportsRowErrors(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/transformations/apply", map[string]interface{}{
		"transformation_type": "custom",
		"logic":               "{x}.toUpperCase()",
		"rows": []model.Row{
			{"x": "ok"},
			{"x": 42},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Values     []interface{} `json:"values"`
		ErrorCount int           `json:"error_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Values[0])
	assert.Nil(t, body.Values[1])
	assert.Equal(t, 1, body.ErrorCount)
}

func TestGenerateFormula(t *testing.T) {
	client := &stubLLM{response: `{"formula": "{first} + \" \" + {last}", "explanation": "joins the names"}`}
	r := newTestRouter(t, client)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/transformations/formula", map[string]interface{}{
		"description":  "combine first and last name",
		"input_fields": []string{"first", "last"},
		"output_field": "name",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Formula            string `json:"formula"`
		TransformationType string `json:"transformation_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Formula, "{first}")
	assert.Equal(t, "concatenate", body.TransformationType)
}

func TestValidateData(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/validate", map[string]interface{}{
		"schema_type": "customers",
		"records": []model.Row{
			{"id": "1", "name": "Ann", "email": "ann@example.com"},
			{"id": "2", "name": "Bob", "email": "not-an-email"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report model.ValidationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, "email", report.Errors[0].Field)
	assert.Equal(t, 2, report.Stats.TotalRecords)
	assert.Less(t, report.OverallConfidence, 1.0)
}

func TestValidateDataNoRecords(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/validate", map[string]interface{}{
		"schema_type": "customers",
		"records":     []model.Row{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeNoDataProvided, errorCode(t, rec))
}

func TestSuggestFixesEmptySkipsLLM(t *testing.T) {
	// A failing client proves no LLM call happens for an empty batch.
	r := newTestRouter(t, &stubLLM{err: model.ErrLLMCallFailed})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/validate/fixes", map[string]interface{}{
		"errors": []model.ValidationError{},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
}

func TestDatasetLifecycle(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	name := "August customers"
	category := "customers"
	rec := doJSON(t, r, http.MethodPost, "/api/v1/datasets", model.DatasetPatch{
		FileID:       "file-123",
		Name:         &name,
		DataCategory: &category,
		Mappings: []model.FieldMapping{
			{InputField: "Customer Name", OutputField: "name", Confidence: 0.9},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "August customers", saved.Name)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/datasets/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var loaded model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	assert.Equal(t, saved.ID, loaded.ID)
	require.Len(t, loaded.Mappings, 1)
	assert.Equal(t, "name", loaded.Mappings[0].OutputField)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestDatasetNotFound(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/datasets/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.CodeDatasetNotFound, errorCode(t, rec))
}

func TestSaveDatasetRequiresFileID(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodPost, "/api/v1/datasets", map[string]interface{}{
		"name": "missing file id",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeInvalidInput, errorCode(t, rec))
}

func TestExportDatasetCSV(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	category := "customers"
	rec := doJSON(t, r, http.MethodPost, "/api/v1/datasets", model.DatasetPatch{
		FileID:       "file-exp",
		DataCategory: &category,
		Mappings: []model.FieldMapping{
			{InputField: "Customer Name", OutputField: "name"},
			{InputField: "Email Address", OutputField: "email"},
		},
		TargetFields: []model.TargetField{
			{Name: "name", Type: model.FieldTypeString, Required: true},
			{Name: "email", Type: model.FieldTypeString, Required: true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/datasets/"+saved.ID+"/export", map[string]interface{}{
		"format": "csv",
		"rows": []model.Row{
			{"Customer Name": "Ann", "Email Address": "ann@example.com"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,email", lines[0])
	assert.Equal(t, "Ann,ann@example.com", lines[1])
}

func TestExportDatasetPersistsAndDownloads(t *testing.T) {
	h := newTestHandler(t, &stubLLM{})
	h.Exports = utils.NewExportDir(t.TempDir())
	r := api.NewRouter(h)

	category := "customers"
	rec := doJSON(t, r, http.MethodPost, "/api/v1/datasets", model.DatasetPatch{
		FileID:       "file-persist",
		DataCategory: &category,
		Mappings: []model.FieldMapping{
			{InputField: "Customer Name", OutputField: "name"},
		},
		TargetFields: []model.TargetField{
			{Name: "name", Type: model.FieldTypeString, Required: true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/datasets/"+saved.ID+"/export", map[string]interface{}{
		"format": "csv",
		"rows":   []model.Row{{"Customer Name": "Ann"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	downloadURL := rec.Header().Get("X-Download-URL")
	require.NotEmpty(t, downloadURL)

	rec = doJSON(t, r, http.MethodGet, downloadURL, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Ann")
}

func TestExportDatasetRejectsUnknownFormat(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	category := "customers"
	rec := doJSON(t, r, http.MethodPost, "/api/v1/datasets", model.DatasetPatch{
		FileID:       "file-fmt",
		DataCategory: &category,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var saved model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/datasets/"+saved.ID+"/export", map[string]interface{}{
		"format": "xlsx",
		"rows":   []model.Row{{"a": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemas(t *testing.T) {
	r := newTestRouter(t, &stubLLM{})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Schemas []string `json:"schemas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Contains(t, list.Schemas, "customers")

	rec = doJSON(t, r, http.MethodGet, "/api/v1/schemas/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		SchemaType   string              `json:"schema_type"`
		TargetFields []model.TargetField `json:"target_fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "customers", detail.SchemaType)
	assert.NotEmpty(t, detail.TargetFields)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/schemas/unicorns", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.CodeUnknownSchemaType, errorCode(t, rec))
}

func TestStatsReflectMappingCalls(t *testing.T) {
	client := &stubLLM{response: `{"mappings": [], "unmapped_fields": [], "overall_confidence": 0}`}
	r := newTestRouter(t, client)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"input_fields":  []string{"a"},
		"data_category": "customers",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Counters        map[string]int64 `json:"counters"`
		TokensUsedToday int              `json:"tokens_used_today"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Counters["mapping_calls_total"])
}
