package models

import "time"

// Chat roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	Model     string        `json:"model"`
	Scrape    string        `json:"scrape,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
}

// ChatChoice mirrors the chat-completions choice envelope.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatResponse carries the single assistant reply.
type ChatResponse struct {
	Choices   []ChatChoice `json:"choices"`
	Intent    string       `json:"intent"`
	SessionID string       `json:"sessionId"`
}

// ScrapeContext is the last page scraped within a chat session.
type ScrapeContext struct {
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// Empty reports whether there is usable scraped text.
func (s *ScrapeContext) Empty() bool {
	return s == nil || s.Content == ""
}

// TimeInfo is the payload of GET /time.
type TimeInfo struct {
	CurrentTime string `json:"currentTime"`
	TimeZone    string `json:"timeZone"`
}
