package llm

import (
	"context"
	"strings"
)

const (
	ProviderHuggingFace = "huggingface"

	huggingFaceBaseURL   = "https://api-inference.huggingface.co/models"
	huggingFaceModel     = "mistralai/Mistral-7B-Instruct-v0.2"
	huggingFaceFallback  = "No response from the Hugging Face model. Please try again later."
	huggingFaceMaxTokens = 512
)

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type huggingFaceResult struct {
	GeneratedText string `json:"generated_text"`
}

// HuggingFace calls the text-generation inference API, which takes a flat prompt.
type HuggingFace struct {
	httpBase
}

// NewHuggingFace creates a Hugging Face inference client.
func NewHuggingFace(cfg Config) *HuggingFace {
	return &HuggingFace{httpBase: newHTTPBase(ProviderHuggingFace, cfg, huggingFaceBaseURL, huggingFaceModel)}
}

// SendChat renders the transcript into a role-prefixed prompt.
func (c *HuggingFace) SendChat(ctx context.Context, transcript []Message, opts Options) (string, error) {
	req := huggingFaceRequest{
		Inputs:     renderPrompt(transcript),
		Parameters: huggingFaceParameters{MaxNewTokens: huggingFaceMaxTokens},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var results []huggingFaceResult
	if err := c.postJSON(ctx, c.baseURL+"/"+c.modelFor(opts), headers, req, &results); err != nil {
		return "", err
	}
	if len(results) == 0 {
		return huggingFaceFallback, nil
	}
	text := strings.TrimSpace(results[0].GeneratedText)
	if text == "" {
		return huggingFaceFallback, nil
	}
	return text, nil
}

func renderPrompt(transcript []Message) string {
	var b strings.Builder
	for _, m := range transcript {
		switch m.Role {
		case RoleSystem:
			b.WriteString("System: ")
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}
