package llm

import (
	"context"
	"net/url"
	"strings"
)

const (
	ProviderGemini = "gemini"

	geminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel    = "gemini-1.5-flash"
	geminiFallback = "Gemini did not return a response. Please try rephrasing your question."
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini speaks the generateContent envelope. System turns go to systemInstruction
// and assistant turns use the "model" role.
type Gemini struct {
	httpBase
}

// NewGemini creates a Gemini client.
func NewGemini(cfg Config) *Gemini {
	return &Gemini{httpBase: newHTTPBase(ProviderGemini, cfg, geminiBaseURL, geminiModel)}
}

// SendChat translates the transcript into contents/parts.
func (c *Gemini) SendChat(ctx context.Context, transcript []Message, opts Options) (string, error) {
	system, turns := splitSystem(transcript)

	req := geminiRequest{Contents: make([]geminiContent, 0, len(turns))}
	for _, m := range turns {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(c.modelFor(opts)) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var resp geminiResponse
	if err := c.postJSON(ctx, endpoint, headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return geminiFallback, nil
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return geminiFallback, nil
	}
	return text, nil
}
