package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "university admissions", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "news-key", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"status":"ok","articles":[{"source":{"name":"Campus Times"},"title":"Entrance exam dates out","description":"Dates announced","url":"https://news.example/1","publishedAt":"2025-01-05T10:00:00Z"}]}`))
	}))
	defer srv.Close()

	articles, err := NewClient("news-key", srv.URL, time.Second).Search(context.Background(), "university admissions", 3)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Campus Times", articles[0].Source)
	assert.Equal(t, 2025, articles[0].PublishedAt.Year())
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", srv.URL, time.Second).Search(context.Background(), "x", 0)
	assert.Error(t, err)
}

func TestSearchNotConfigured(t *testing.T) {
	c := NewClient("", "", 0)
	assert.False(t, c.Enabled())
	_, err := c.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
