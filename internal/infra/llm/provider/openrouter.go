package provider

import (
	"context"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

const (
	openRouterBaseURL  = "https://openrouter.ai"
	openRouterChatPath = "/api/v1/chat/completions"
)

// DefaultOpenRouterModels is the model order used when none is configured.
var DefaultOpenRouterModels = []string{
	"meta-llama/llama-3.3-70b-instruct:free",
	"mistralai/mistral-7b-instruct:free",
}

// OpenRouterBackend classifies through OpenRouter's chat API. OpenRouter can
// report upstream rate limits inside a 200 response body.
type OpenRouterBackend struct {
	*BaseBackend
}

// NewOpenRouterBackend creates an OpenRouter backend.
func NewOpenRouterBackend(opts Options) *OpenRouterBackend {
	if len(opts.Models) == 0 {
		opts.Models = DefaultOpenRouterModels
	}
	b := &OpenRouterBackend{BaseBackend: NewBaseBackend(domain.BackendOpenRouter, openRouterBaseURL, opts)}
	b.http.SetHeader("HTTP-Referer", "https://github.com/vietddude/ecoscout")
	b.http.SetHeader("X-Title", "ecoscout")
	return b
}

// Classify implements Backend.
func (o *OpenRouterBackend) Classify(
	ctx context.Context,
	req domain.ClassificationRequest,
) (domain.Classification, error) {
	return o.classifyWithModels(ctx, req, o.call)
}

func (o *OpenRouterBackend) call(ctx context.Context, key, model string, prompt Prompt) (string, error) {
	// Free models do not all accept response_format, so JSON mode stays off.
	body, err := o.post(ctx, o.http.R().SetAuthToken(key), openRouterChatPath, newChatRequest(model, prompt, false))
	if err != nil {
		return "", err
	}
	return chatContent(o.id, body)
}
