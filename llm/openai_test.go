package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Dear applicant  "}, "finish_reason": "length"}]
		}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, p.ModelID())

	resp, err := p.Generate(context.Background(), Request{System: "be brief", Input: "hello", MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "Dear applicant", resp.Text)
	assert.Equal(t, "max_tokens", resp.StopReason)

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "hello", msgs[1].(map[string]any)["content"])
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"rate limit", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.ErrorAs(t, err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var pu *ErrProviderUnavailable
			assert.ErrorAs(t, err, &pu)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "test"}}`))
			}))
			defer srv.Close()

			p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), Request{Input: "hi"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "model": "m", "choices": []}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{Input: "hi"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
