package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gembotdev/gembot/internal/models"
	"github.com/gembotdev/gembot/internal/utils"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent REST endpoint with an API key.
type Gemini struct {
	http   *resty.Client
	apiKey string
	model  string
	gen    GenerationConfig
	retry  RetryPolicy
}

func NewGemini(baseURL, apiKey, model string, gen GenerationConfig, retry RetryPolicy) (*Gemini, error) {
	if apiKey == "" {
		return nil, utils.E(utils.CodeConfig, "llm.NewGemini", "GEMINI_API_KEY is not set", nil)
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &Gemini{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(60 * time.Second),
		apiKey: apiKey,
		model:  model,
		gen:    gen,
		retry:  retry,
	}, nil
}

func (g *Gemini) Close() error { return nil }

// Wire types follow the generateContent JSON contract.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) buildRequest(systemPrompt string, conv models.Conversation) geminiRequest {
	req := geminiRequest{
		Contents: make([]geminiContent, 0, len(conv)),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.gen.Temperature,
			TopP:            g.gen.TopP,
			TopK:            g.gen.TopK,
			MaxOutputTokens: g.gen.MaxOutputTokens,
		},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &geminiContent{
			Role:  "system",
			Parts: []geminiPart{{Text: systemPrompt}},
		}
	}
	for _, t := range conv {
		req.Contents = append(req.Contents, geminiContent{
			Role:  t.Role,
			Parts: []geminiPart{{Text: t.Text}},
		})
	}
	return req
}

func (g *Gemini) Complete(ctx context.Context, systemPrompt string, conv models.Conversation) (string, error) {
	body := g.buildRequest(systemPrompt, conv)
	path := "/v1beta/models/" + g.model + ":generateContent"

	var reply string
	err := g.retry.Do(ctx, func() error {
		resp, err := g.http.R().
			SetContext(ctx).
			SetQueryParam("key", g.apiKey).
			SetBody(body).
			Post(path)
		if err != nil {
			// transport-level failure (DNS, conn reset, timeout)
			return &APIError{Transient: true, Err: err}
		}

		code := resp.StatusCode()
		if code != http.StatusOK {
			return &APIError{
				StatusCode: code,
				Transient:  code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable,
				Body:       truncate(string(resp.Body()), 512),
			}
		}

		var out geminiResponse
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return ErrNoResponse
		}
		text := out.text()
		if text == "" {
			return ErrNoResponse
		}
		reply = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Provider = (*Gemini)(nil)
