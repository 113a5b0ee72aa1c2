package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// OpenAI-compatible chat completion wire types, used by Groq and OpenRouter.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

func newChatRequest(model string, prompt Prompt, jsonMode bool) chatRequest {
	req := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: 0.1,
		MaxTokens:   400,
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return req
}

// chatContent extracts the first choice's message content.
func chatContent(backend domain.BackendID, body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%s parse response: %w", backend, err)
	}
	if resp.Error != nil {
		return "", resp.Error.err(backend)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices: %w", backend, ErrEmptyResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: %w", backend, ErrEmptyResponse)
	}
	return content, nil
}
