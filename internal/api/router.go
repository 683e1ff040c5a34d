package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/jigardalal/databridge/internal/api/handler"
	"github.com/jigardalal/databridge/pkg/router"
)

// RegisterRoutes wires every API endpoint onto the router.
func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.POST("/api/v1/mappings", h.MapFields)
	r.POST("/api/v1/mappings/classify", h.ClassifyTab)

	r.POST("/api/v1/transformations/apply", h.ApplyTransformation)
	r.POST("/api/v1/transformations/formula", h.GenerateFormula)

	r.POST("/api/v1/validate", h.ValidateData)
	r.POST("/api/v1/validate/fixes", h.SuggestFixes)

	r.POST("/api/v1/files/parse", h.ParseFile)

	r.POST("/api/v1/datasets", h.SaveDataset)
	r.GET("/api/v1/datasets", h.ListDatasets)
	// More specific routes first
	r.POST("/api/v1/datasets/*/export", h.ExportDataset)
	// Generic dataset route last
	r.GET("/api/v1/datasets/*", h.GetDataset)

	r.GET("/api/v1/exports/*/*", h.DownloadExport)

	r.GET("/api/v1/schemas", h.ListSchemas)
	r.GET("/api/v1/schemas/*", h.GetSchema)

	r.GET("/api/v1/stats", h.GetStats)

	r.Handle("/swagger/", httpSwagger.WrapHandler)
}

// NewRouter builds the router with all routes registered.
func NewRouter(h *handler.Handler) *router.Router {
	r := router.New()
	RegisterRoutes(r, h)
	return r
}
