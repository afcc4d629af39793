package llm

import (
	"context"
	"errors"
	"net/http"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/googleapi"

	"github.com/gembotdev/gembot/internal/models"
)

// VertexGemini is the Vertex AI backend, authenticated via application
// default credentials instead of an API key.
type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
	gen       GenerationConfig
	retry     RetryPolicy
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, gen GenerationConfig, retry RetryPolicy) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	return &VertexGemini{client: c, modelName: modelName, gen: gen, retry: retry}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Complete(ctx context.Context, systemPrompt string, conv models.Conversation) (string, error) {
	if len(conv) == 0 {
		return "", ErrNoResponse
	}

	// Fresh model per call: SystemInstruction changes with the prompt
	// setting and GenerativeModel is not safe to mutate while shared.
	m := v.client.GenerativeModel(v.modelName)
	m.SetTemperature(float32(v.gen.Temperature))
	m.SetTopP(float32(v.gen.TopP))
	m.SetTopK(int32(v.gen.TopK))
	m.SetMaxOutputTokens(int32(v.gen.MaxOutputTokens))
	if systemPrompt != "" {
		m.SystemInstruction = &vertexgenai.Content{
			Parts: []vertexgenai.Part{vertexgenai.Text(systemPrompt)},
		}
	}

	cs := m.StartChat()
	for _, t := range conv[:len(conv)-1] {
		cs.History = append(cs.History, &vertexgenai.Content{
			Role:  t.Role,
			Parts: []vertexgenai.Part{vertexgenai.Text(t.Text)},
		})
	}
	last := conv[len(conv)-1]

	var reply string
	err := v.retry.Do(ctx, func() error {
		resp, err := cs.SendMessage(ctx, vertexgenai.Text(last.Text))
		if err != nil {
			return classifyVertexErr(err)
		}
		text := candidateText(resp)
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

func classifyVertexErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{
			StatusCode: gerr.Code,
			Transient:  gerr.Code == http.StatusTooManyRequests || gerr.Code == http.StatusServiceUnavailable,
			Body:       truncate(gerr.Message, 512),
			Err:        err,
		}
	}
	// no HTTP status to inspect: treat as a transport failure
	return &APIError{Transient: true, Err: err}
}

func candidateText(resp *vertexgenai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
			return string(t)
		}
	}
	return ""
}

var _ Provider = (*VertexGemini)(nil)
