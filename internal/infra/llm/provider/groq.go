package provider

import (
	"context"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

const (
	groqBaseURL  = "https://api.groq.com"
	groqChatPath = "/openai/v1/chat/completions"
)

// DefaultGroqModels is the model order used when none is configured.
var DefaultGroqModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
}

// GroqBackend classifies through Groq's OpenAI-compatible chat API.
type GroqBackend struct {
	*BaseBackend
}

// NewGroqBackend creates a Groq backend.
func NewGroqBackend(opts Options) *GroqBackend {
	if len(opts.Models) == 0 {
		opts.Models = DefaultGroqModels
	}
	return &GroqBackend{BaseBackend: NewBaseBackend(domain.BackendGroq, groqBaseURL, opts)}
}

// Classify implements Backend.
func (g *GroqBackend) Classify(
	ctx context.Context,
	req domain.ClassificationRequest,
) (domain.Classification, error) {
	return g.classifyWithModels(ctx, req, g.call)
}

func (g *GroqBackend) call(ctx context.Context, key, model string, prompt Prompt) (string, error) {
	body, err := g.post(ctx, g.http.R().SetAuthToken(key), groqChatPath, newChatRequest(model, prompt, true))
	if err != nil {
		return "", err
	}
	return chatContent(g.id, body)
}
