package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "they was going. this is important"

const modelReply = "Sure! Here are the issues:\n```json\n" +
	`{"issues": [{"id": "g1", "type": "grammar", "message": "Agreement", "text": "they was", "position": 0, "length": 8, "suggestions": ["they were"]}]}` +
	"\n```"

func geminiServer(t *testing.T, status int, reply string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 0.2, req.GenerationConfig.Temperature, 0.0001)
		assert.Equal(t, 1024, req.GenerationConfig.MaxOutputTokens)
		if assert.Len(t, req.Contents, 1) && assert.Len(t, req.Contents[0].Parts, 1) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, sample)
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": reply}}}},
			},
		})
	}))
}

func TestNew(t *testing.T) {
	_, err := New(Config{Kind: KindGemini}, zerolog.Nop())
	require.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(Config{Kind: "bard", APIKey: "k"}, zerolog.Nop())
	require.ErrorIs(t, err, ErrUnknownKind)

	c, err := New(Config{Kind: "OpenAI", APIKey: "k"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, KindOpenAI, c.Kind())
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestGemini(t *testing.T) {
	var calls atomic.Int32
	srv := geminiServer(t, http.StatusOK, modelReply, &calls)
	defer srv.Close()

	c, err := New(Config{Kind: KindGemini, Endpoint: srv.URL + "/", Model: "test-model", APIKey: "secret"}, zerolog.Nop())
	require.NoError(t, err)

	got, err := c.Check(context.Background(), sample, "en-us")
	require.NoError(t, err)
	assert.Equal(t, []issue.Issue{{
		ID:          "g1",
		Type:        issue.Grammar,
		Message:     "Agreement",
		Text:        "they was",
		Position:    0,
		Length:      8,
		Suggestions: []string{"they were"},
	}}, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGemini_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
	}{
		{name: "server error", status: http.StatusInternalServerError, reply: modelReply},
		{name: "no json", status: http.StatusOK, reply: "Looks great to me!"},
		{name: "malformed json", status: http.StatusOK, reply: `{"issues": [{"id": 1,}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := geminiServer(t, tt.status, tt.reply, &calls)
			defer srv.Close()

			c, err := New(Config{Kind: KindGemini, Endpoint: srv.URL, Model: "test-model", APIKey: "secret"}, zerolog.Nop())
			require.NoError(t, err)

			_, err = c.Check(context.Background(), sample, "en-us")
			require.Error(t, err)

			got := c.Analyze(context.Background(), sample, "en-us")
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(Config{Kind: KindGemini, Endpoint: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)

	start := time.Now()
	assert.Empty(t, c.Analyze(context.Background(), sample, "en-us"))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_EmptyTextSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := geminiServer(t, http.StatusOK, modelReply, &calls)
	defer srv.Close()

	c, err := New(Config{Kind: KindGemini, Endpoint: srv.URL, Model: "test-model", APIKey: "secret"}, zerolog.Nop())
	require.NoError(t, err)

	got, err := c.Check(context.Background(), "  \n", "en-us")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, calls.Load())
}

func TestClient_RateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := geminiServer(t, http.StatusOK, modelReply, &calls)
	defer srv.Close()

	c, err := New(Config{Kind: KindGemini, Endpoint: srv.URL, Model: "test-model", APIKey: "secret", RateLimit: 0.001, Burst: 1}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Check(context.Background(), sample, "en-us")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Check(ctx, sample, "en-us")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "local-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Contains(t, req.Messages[1].Content, sample)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "local-model",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": `[{"type": "capitalization", "text": "this", "position": 16, "length": 4, "suggestions": ["This"]}]`,
				},
			}},
		})
	}))
	defer srv.Close()

	c, err := New(Config{Kind: KindOpenAI, Endpoint: srv.URL + "/v1", Model: "local-model", APIKey: "secret"}, zerolog.Nop())
	require.NoError(t, err)

	got := c.Analyze(context.Background(), sample, "en-us")
	require.Len(t, got, 1)
	assert.Equal(t, "remote-16", got[0].ID)
	assert.Equal(t, issue.Capitalization, got[0].Type)
	assert.Equal(t, "this", got[0].Text)
}

func TestPrompt(t *testing.T) {
	p := Prompt("hello \"world\"", "fr")
	assert.Contains(t, p, "issues in fr language")
	assert.Contains(t, p, `"hello \"world\""`)
	for _, field := range []string{"id", "type", "message", "text", "position", "length", "suggestions"} {
		assert.Contains(t, p, "- "+field+" (")
	}
}
