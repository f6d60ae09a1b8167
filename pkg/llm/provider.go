// Package llm holds the chat-completion backends the chat router can forward to.
// Every backend implements Provider and owns its wire envelope.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	defaultTimeout = 60 * time.Second
	maxErrorBody   = 512
)

// ErrNotConfigured is returned when a provider has no API key.
var ErrNotConfigured = errors.New("llm: provider not configured")

// Message is one turn of a transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single request.
type Options struct {
	// Model overrides the provider's default model when set.
	Model string
}

// Provider sends a transcript to a remote model and returns the assistant text.
// A response that parses but carries no usable text yields the provider's fallback
// text with a nil error; transport and status failures return an error.
type Provider interface {
	Name() string
	SendChat(ctx context.Context, transcript []Message, opts Options) (string, error)
}

// Config configures one provider client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.Code, e.Body)
}

type httpBase struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newHTTPBase(name string, cfg Config, defaultBaseURL, defaultModel string) httpBase {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return httpBase{
		name:       name,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b httpBase) Name() string { return b.name }

func (b httpBase) modelFor(opts Options) string {
	if opts.Model != "" {
		return opts.Model
	}
	return b.model
}

// postJSON marshals payload, sends it with the given headers and decodes a 200 body into out.
func (b httpBase) postJSON(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error {
	if b.apiKey == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: marshaling request: %w", b.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", b.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: executing request: %w", b.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Provider: b.name, Code: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", b.name, err)
	}
	return nil
}

// splitSystem separates system turns from the conversational ones.
func splitSystem(transcript []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Role == RoleSystem {
			if s := strings.TrimSpace(m.Content); s != "" {
				system = append(system, s)
			}
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
