// Package llm talks to the generative model endpoint. Two backends are
// provided: the Gemini REST API (API key) and Vertex AI (ADC); both sit
// behind Provider so the chat service does not care which is wired.
package llm

import (
	"context"

	"github.com/gembotdev/gembot/internal/models"
)

type Provider interface {
	// Complete sends the system prompt plus the (already trimmed)
	// conversation and returns the model's reply text.
	Complete(ctx context.Context, systemPrompt string, conv models.Conversation) (string, error)
	Close() error
}

// GenerationConfig carries the fixed sampling parameters sent with
// every request.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 1024,
	}
}
