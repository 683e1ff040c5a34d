package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/jigardalal/databridge/internal/api"
	"github.com/jigardalal/databridge/internal/api/handler"
	"github.com/jigardalal/databridge/internal/llm"
	"github.com/jigardalal/databridge/internal/mapping"
	"github.com/jigardalal/databridge/internal/schema"
	"github.com/jigardalal/databridge/internal/store"
	"github.com/jigardalal/databridge/internal/validate"
	"github.com/jigardalal/databridge/pkg/utils"
)

// @title DataBridge API
// @version 1.0
// @description Spreadsheet data onboarding: field mapping, transformation, validation and export.
// @BasePath /api/v1

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		fmt.Println("📦 Loaded configuration from .env")
	}

	dbPath := envOr("DATABRIDGE_DB", "databridge.db")
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to open database %s: %v", dbPath, err)
	}
	defer st.Close()

	registry := schema.NewRegistry()
	if schemaFile := os.Getenv("DATABRIDGE_SCHEMA_FILE"); schemaFile != "" {
		registry, err = schema.NewRegistryFromFile(schemaFile)
		if err != nil {
			log.Fatalf("❌ Failed to load schema overrides from %s: %v", schemaFile, err)
		}
		fmt.Printf("📋 Loaded schema overrides from %s\n", schemaFile)
	}

	client, err := llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
	if err != nil {
		log.Fatalf("❌ LLM client setup failed: %v", err)
	}

	budget := llm.NewBudget(envInt("DATABRIDGE_DAILY_TOKEN_LIMIT", 1_000_000))
	llmClient := llm.WithRetry(llm.WithBudget(client, budget), llm.DefaultRetryConfig())

	mapper := mapping.NewEngine(llmClient, st, st)
	validator := validate.NewEngine(registry, llmClient)

	h := handler.New(st, registry, mapper, validator, llmClient, budget)
	h.Exports = utils.NewExportDir(envOr("DATABRIDGE_EXPORT_DIR", "exports"))
	r := api.NewRouter(h)

	addr := envOr("DATABRIDGE_ADDR", ":8080")
	if err := r.Start(addr); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
