package config

import (
	"os"
	"strconv"
	"time"
)

// AppConfig gathers the tunables the chat path needs. Built once in
// main and passed down; nothing reads these env vars elsewhere.
type AppConfig struct {
	Port string

	HistoryMaxTurns int
	HistoryTTL      time.Duration

	LLMProvider    string // "gemini" (REST, API key) or "vertex" (ADC)
	GeminiAPIKey   string
	GeminiBaseURL  string
	Model          string
	VertexProject  string
	VertexLocation string

	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int

	MaxAttempts    int
	RetryBaseDelay time.Duration

	ExportBucket string // empty disables export upload
}

func LoadApp() AppConfig {
	return AppConfig{
		Port: envStr("PORT", "8080"),

		HistoryMaxTurns: envInt("HISTORY_MAX_TURNS", 10),
		HistoryTTL:      time.Duration(envInt("HISTORY_TTL_SECONDS", 21600)) * time.Second,

		LLMProvider:    envStr("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:  os.Getenv("GEMINI_BASE_URL"),
		Model:          envStr("LLM_MODEL", "gemini-1.5-flash"),
		VertexProject:  os.Getenv("VERTEX_PROJECT_ID"),
		VertexLocation: envStr("VERTEX_LOCATION", "us-central1"),

		Temperature:     envFloat("LLM_TEMPERATURE", 0.7),
		TopP:            envFloat("LLM_TOP_P", 0.95),
		TopK:            envInt("LLM_TOP_K", 40),
		MaxOutputTokens: envInt("LLM_MAX_OUTPUT_TOKENS", 1024),

		MaxAttempts:    envInt("LLM_MAX_ATTEMPTS", 3),
		RetryBaseDelay: time.Duration(envInt("LLM_RETRY_BASE_MS", 1000)) * time.Millisecond,

		ExportBucket: os.Getenv("EXPORT_BUCKET"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
