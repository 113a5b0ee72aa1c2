package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// DefaultGeminiModels is the model order used when none is configured.
var DefaultGeminiModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
}

// GeminiBackend classifies through the Gemini generateContent API.
type GeminiBackend struct {
	*BaseBackend
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *apiError `json:"error"`
}

// NewGeminiBackend creates a Gemini backend.
func NewGeminiBackend(opts Options) *GeminiBackend {
	if len(opts.Models) == 0 {
		opts.Models = DefaultGeminiModels
	}
	return &GeminiBackend{BaseBackend: NewBaseBackend(domain.BackendGemini, geminiBaseURL, opts)}
}

// Classify implements Backend.
func (g *GeminiBackend) Classify(
	ctx context.Context,
	req domain.ClassificationRequest,
) (domain.Classification, error) {
	return g.classifyWithModels(ctx, req, g.call)
}

func (g *GeminiBackend) call(ctx context.Context, key, model string, prompt Prompt) (string, error) {
	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: prompt.System}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt.User}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0.1,
			MaxOutputTokens:  400,
			ResponseMimeType: "application/json",
		},
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(model))
	body, err := g.post(ctx, g.http.R().SetHeader("x-goog-api-key", key), path, reqBody)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%s parse response: %w", g.id, err)
	}
	if resp.Error != nil {
		return "", resp.Error.err(g.id)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%s: prompt blocked: %s", g.id, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%s: no candidates: %w", g.id, ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("%s: %w", g.id, ErrEmptyResponse)
	}
	return text.String(), nil
}
