package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transcript = []Message{
	{Role: RoleSystem, Content: "You are an admissions assistant."},
	{Role: RoleUser, Content: "Which courses are open?"},
	{Role: RoleAssistant, Content: "BSc and MBA."},
	{Role: RoleUser, Content: "Fees for MBA?"},
}

func TestOpenRouterSendChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openRouterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "custom/model", req.Model)
		assert.Len(t, req.Messages, 4)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" The MBA fee is listed on the site. "}}]}`))
	}))
	defer srv.Close()

	c := NewOpenRouter(Config{APIKey: "test-key", BaseURL: srv.URL})
	text, err := c.SendChat(context.Background(), transcript, Options{Model: "custom/model"})
	require.NoError(t, err)
	assert.Equal(t, "The MBA fee is listed on the site.", text)
}

func TestOpenRouterEmptyChoicesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenRouter(Config{APIKey: "k", BaseURL: srv.URL})
	text, err := c.SendChat(context.Background(), transcript, Options{})
	require.NoError(t, err)
	assert.Equal(t, openRouterFallback, text)
}

func TestOpenRouterStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	}))
	defer srv.Close()

	c := NewOpenRouter(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.SendChat(context.Background(), transcript, Options{})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "upstream down", statusErr.Body)
}

func TestMissingKeyIsNotConfigured(t *testing.T) {
	c := NewOpenRouter(Config{})
	_, err := c.SendChat(context.Background(), transcript, Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGeminiSendChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "You are an admissions assistant.", req.SystemInstruction.Parts[0].Text)
		require.Len(t, req.Contents, 3)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "model", req.Contents[1].Role)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Fees are "},{"text":"on the brochure."}]}}]}`))
	}))
	defer srv.Close()

	c := NewGemini(Config{APIKey: "g-key", BaseURL: srv.URL})
	text, err := c.SendChat(context.Background(), transcript, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Fees are on the brochure.", text)
}

func TestGeminiNoCandidatesFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewGemini(Config{APIKey: "g", BaseURL: srv.URL})
	text, err := c.SendChat(context.Background(), transcript, Options{})
	require.NoError(t, err)
	assert.Equal(t, geminiFallback, text)
}

func TestHuggingFaceSendChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/org/model", r.URL.Path)

		var req huggingFaceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Inputs, "System: You are an admissions assistant.\n")
		assert.Contains(t, req.Inputs, "User: Fees for MBA?\nAssistant:")

		w.Write([]byte(`[{"generated_text":"Around 2 lakh per year."}]`))
	}))
	defer srv.Close()

	c := NewHuggingFace(Config{APIKey: "hf", BaseURL: srv.URL})
	text, err := c.SendChat(context.Background(), transcript, Options{Model: "org/model"})
	require.NoError(t, err)
	assert.Equal(t, "Around 2 lakh per year.", text)
}

func TestHuggingFaceEmptyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewHuggingFace(Config{APIKey: "hf", BaseURL: srv.URL})
	text, err := c.SendChat(context.Background(), transcript, Options{})
	require.NoError(t, err)
	assert.Equal(t, huggingFaceFallback, text)
}
