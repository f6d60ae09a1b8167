package llm

import (
	"context"
	"strings"
)

const (
	ProviderOpenRouter = "openrouter"

	openRouterBaseURL  = "https://openrouter.ai/api/v1"
	openRouterModel    = "meta-llama/llama-3.1-8b-instruct"
	openRouterFallback = "Sorry, I couldn't generate a response right now. Please try again."
)

type openRouterRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type openRouterResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// OpenRouter speaks the OpenAI chat-completions envelope.
type OpenRouter struct {
	httpBase
}

// NewOpenRouter creates an OpenRouter client.
func NewOpenRouter(cfg Config) *OpenRouter {
	return &OpenRouter{httpBase: newHTTPBase(ProviderOpenRouter, cfg, openRouterBaseURL, openRouterModel)}
}

// SendChat forwards the transcript unchanged.
func (c *OpenRouter) SendChat(ctx context.Context, transcript []Message, opts Options) (string, error) {
	req := openRouterRequest{Model: c.modelFor(opts), Messages: transcript}
	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"X-Title":       "admissions-crm",
	}

	var resp openRouterResponse
	if err := c.postJSON(ctx, c.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return openRouterFallback, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return openRouterFallback, nil
	}
	return text, nil
}
