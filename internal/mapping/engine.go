package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jigardalal/databridge/internal/llm"
	"github.com/jigardalal/databridge/internal/model"
	"github.com/jigardalal/databridge/pkg/utils"
)

// Cache memoizes mapping results per (category, input field set). The store
// package provides the sqlite-backed implementation.
type Cache interface {
	GetCachedMappings(category string, inputFields []string) ([]model.CachedMapping, bool, error)
	PutCachedMappings(category string, inputFields []string, mappings []model.CachedMapping) error
}

// Stats records usage counters. Advisory only; failures are ignored.
type Stats interface {
	IncrementStat(key string) error
}

// Engine orchestrates field mapping: cache lookup, LLM classification and
// result normalization.
type Engine struct {
	llm   llm.Client
	cache Cache
	stats Stats
}

// NewEngine wires an engine from its collaborators. cache and stats may be
// nil, which disables memoization and usage accounting.
func NewEngine(client llm.Client, cache Cache, stats Stats) *Engine {
	return &Engine{llm: client, cache: cache, stats: stats}
}

// statKey mirrors store.MappingStatKey without importing the store package.
func statKey(category, outputField string) string {
	return fmt.Sprintf("mapped:%s:%s", category, outputField)
}

func (e *Engine) bump(key string) {
	if e.stats != nil {
		e.stats.IncrementStat(key)
	}
}

// MapFields maps an arbitrary set of input column names onto the target
// schema of the given category. The cache is consulted first; on a miss the
// external LLM capability proposes the mapping and the result is memoized.
func (e *Engine) MapFields(ctx context.Context, category string, inputFields []string, targetFields []model.TargetField) (model.MappingResult, error) {
	if len(inputFields) == 0 {
		return model.MappingResult{}, model.NewError(model.CodeInvalidInput, "input fields are required")
	}
	if len(targetFields) == 0 {
		return model.MappingResult{}, model.NewError(model.CodeInvalidInput, "target fields are required")
	}

	e.bump("mapping_calls_total")

	if e.cache != nil {
		cached, hit, err := e.cache.GetCachedMappings(category, inputFields)
		if err == nil && hit {
			e.bump("mapping_cache_hits")
			mappings := make([]model.FieldMapping, 0, len(cached))
			for _, m := range cached {
				mappings = append(mappings, model.FieldMapping{
					InputField:         m.InputField,
					OutputField:        m.OutputField,
					Confidence:         utils.Clamp01(m.Confidence),
					TransformationType: model.TransformNone,
				})
			}
			// Cached confidences predate later edits; the overall score is
			// always recomputed from the per-mapping values.
			return model.MappingResult{
				Mappings:          mappings,
				UnmappedFields:    []string{},
				OverallConfidence: model.MeanConfidence(mappings),
			}, nil
		}
		if err != nil {
			fmt.Printf("⚠️ Mapping cache lookup failed, falling back to LLM: %v\n", err)
		}
	}

	system, user := mapFieldsPrompts(inputFields, targetFields)
	comp, err := e.llm.Complete(ctx, system, user, llm.Options{JSONMode: true, Temperature: 0.1})
	if err != nil {
		return model.MappingResult{}, err
	}

	var parsed llmMappingResponse
	if err := json.Unmarshal([]byte(stripCodeFence(comp.Content)), &parsed); err != nil {
		return model.MappingResult{}, model.NewError(model.CodeMappingGenerationFailed, "llm response is not valid mapping JSON: %v", err)
	}
	if parsed.Mappings == nil {
		return model.MappingResult{}, model.NewError(model.CodeMappingGenerationFailed, "llm response lacks a mappings array")
	}

	result := normalizeMappings(parsed, targetFields)

	if e.cache != nil {
		cached := make([]model.CachedMapping, 0, len(result.Mappings))
		for _, m := range result.Mappings {
			// Explanations are dropped; the cache keeps only the field pair
			// and its confidence.
			cached = append(cached, model.CachedMapping{
				InputField:  m.InputField,
				OutputField: m.OutputField,
				Confidence:  m.Confidence,
			})
		}
		if err := e.cache.PutCachedMappings(category, inputFields, cached); err != nil {
			fmt.Printf("⚠️ Mapping cache write failed: %v\n", err)
		}
	}

	for _, m := range result.Mappings {
		if m.OutputField != "" {
			e.bump(statKey(category, m.OutputField))
		}
	}

	return result, nil
}

// llmMappingResponse is the strict JSON shape expected from the LLM.
type llmMappingResponse struct {
	Mappings []struct {
		InputField  string  `json:"input_field"`
		OutputField string  `json:"output_field"`
		Confidence  float64 `json:"confidence"`
		Explanation string  `json:"explanation"`
	} `json:"mappings"`
	UnmappedFields    []string `json:"unmapped_fields"`
	OverallConfidence float64  `json:"overall_confidence"`
}

// normalizeMappings converts a parsed LLM response into a MappingResult,
// dropping mappings that point at fields outside the target schema and
// recomputing the derived values locally.
func normalizeMappings(parsed llmMappingResponse, targetFields []model.TargetField) model.MappingResult {
	known := make(map[string]bool, len(targetFields))
	for _, tf := range targetFields {
		known[tf.Name] = true
	}

	mappings := make([]model.FieldMapping, 0, len(parsed.Mappings))
	seen := make(map[string]bool)
	for _, m := range parsed.Mappings {
		if m.InputField == "" {
			continue
		}
		out := m.OutputField
		if out != "" && !known[out] {
			// The model invented a target field; keep the input column
			// visible as unmapped rather than trusting the invention.
			out = ""
		}
		// A valid final set has at most one mapping per non-empty output.
		if out != "" && seen[out] {
			out = ""
		}
		if out != "" {
			seen[out] = true
		}
		mappings = append(mappings, model.FieldMapping{
			InputField:         m.InputField,
			OutputField:        out,
			Confidence:         utils.Clamp01(m.Confidence),
			TransformationType: model.TransformNone,
		})
	}

	return model.MappingResult{
		Mappings:          mappings,
		UnmappedFields:    model.UnmappedTargets(targetFields, mappings),
		OverallConfidence: model.MeanConfidence(mappings),
	}
}

// ClassifyTabContent performs coarse content-type classification from the
// headers and up to five sample rows of a sheet tab.
func (e *Engine) ClassifyTabContent(ctx context.Context, rows []model.Row, possibleTypes []string) (model.ClassificationResult, error) {
	if len(rows) == 0 {
		return model.ClassificationResult{}, model.NewError(model.CodeInvalidInput, "rows are required for classification")
	}
	if len(possibleTypes) == 0 {
		return model.ClassificationResult{}, model.NewError(model.CodeInvalidInput, "possible types are required for classification")
	}

	headers := headerSet(rows)
	samples := rows
	if len(samples) > 5 {
		samples = samples[:5]
	}

	system, user, err := classifyPrompts(headers, samples, possibleTypes)
	if err != nil {
		return model.ClassificationResult{}, err
	}
	comp, err := e.llm.Complete(ctx, system, user, llm.Options{JSONMode: true, Temperature: 0.1})
	if err != nil {
		return model.ClassificationResult{}, err
	}

	var result model.ClassificationResult
	if err := json.Unmarshal([]byte(stripCodeFence(comp.Content)), &result); err != nil {
		return model.ClassificationResult{}, model.NewError(model.CodeMappingGenerationFailed, "llm response is not valid classification JSON: %v", err)
	}
	if result.ClassifiedType == "" {
		return model.ClassificationResult{}, model.NewError(model.CodeMappingGenerationFailed, "llm classification lacks a classified_type")
	}
	result.ConfidenceScore = utils.Clamp01(result.ConfidenceScore)
	if result.SuggestedMappings == nil {
		result.SuggestedMappings = []model.FieldMapping{}
	}
	return result, nil
}

// headerSet collects the union of keys across rows, sorted.
func headerSet(rows []model.Row) []string {
	set := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			set[k] = true
		}
	}
	headers := make([]string, 0, len(set))
	for k := range set {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

// stripCodeFence removes a markdown ```json fence if the model wrapped its
// JSON in one despite JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
