package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  "gpt-4o-mini",
	}
}

func writeOpenAIError(w http.ResponseWriter, status int, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"type": typ, "message": typ},
	})
}

// newHangingOpenAIClient talks to a server that never answers. The handler
// drains the body so it notices the client going away, and it is released by
// a cleanup registered after the server's, so it runs before server.Close.
func newHangingOpenAIClient(t *testing.T) *OpenAIClient {
	t.Helper()
	release := make(chan struct{})
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	t.Cleanup(func() { close(release) })
	return c
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `{"problems":[]}`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	})

	resp, err := c.Complete(context.Background(), Request{
		System:      "sys",
		User:        "user",
		MaxTokens:   3000,
		Temperature: 0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"problems":[]}`, resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, Usage{PromptTokens: 40, CompletionTokens: 25, TotalTokens: 65}, *resp.Usage)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
	assert.Equal(t, 3000, got.MaxCompletionTokens)
}

func TestOpenAIClient_ErrorKinds(t *testing.T) {
	cases := []struct {
		status    int
		kind      ErrorKind
		retryable bool
	}{
		{http.StatusUnauthorized, KindUnauthorized, false},
		{http.StatusBadRequest, KindBadRequest, false},
		{http.StatusTooManyRequests, KindRateLimited, true},
		{http.StatusInternalServerError, KindServerError, true},
		{http.StatusBadGateway, KindServerError, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeOpenAIError(w, tc.status, "err")
			})

			_, err := c.Complete(context.Background(), Request{User: "x", MaxTokens: 10})
			var ee *EndpointError
			require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
			assert.Equal(t, tc.kind, ee.Kind)
			assert.Equal(t, tc.status, ee.StatusCode)
			assert.Equal(t, tc.retryable, ee.Retryable())
		})
	}
}

func TestOpenAIClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	config := openai.DefaultConfig("test-key")
	config.BaseURL = url + "/v1"
	c := &OpenAIClient{client: openai.NewClientWithConfig(config), model: "gpt-4o-mini"}

	_, err := c.Complete(context.Background(), Request{User: "x", MaxTokens: 10})
	var ee *EndpointError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
	assert.Equal(t, KindNetworkError, ee.Kind)
	assert.True(t, ee.Retryable())
}

func TestOpenAIClient_DeadlineIsTimeout(t *testing.T) {
	c := newHangingOpenAIClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, Request{User: "x", MaxTokens: 10})
	var ee *EndpointError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
	assert.Equal(t, KindTimeout, ee.Kind)
}

func TestOpenAIClient_CancelIsNotAnEndpointError(t *testing.T) {
	c := newHangingOpenAIClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Complete(ctx, Request{User: "x", MaxTokens: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var ee *EndpointError
	assert.False(t, errors.As(err, &ee))
}

func TestOpenAIClient_Stream(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		chunks := []string{
			`{"id":"c","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}`,
			`{"id":"c","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"{\"prob"}}]}`,
			`{"id":"c","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"lems\":[]}"}}]}`,
			`{"id":"c","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[],"usage":{"prompt_tokens":12,"completion_tokens":4,"total_tokens":16}}`,
		}
		for _, c := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", c)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	})

	s, err := c.Stream(context.Background(), Request{User: "x", MaxTokens: 10})
	require.NoError(t, err)
	defer s.Close()

	var parts []string
	for {
		text, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		parts = append(parts, text)
	}

	assert.Equal(t, []string{`{"prob`, `lems":[]}`}, parts)
	assert.Equal(t, `{"problems":[]}`, strings.Join(parts, ""))
	require.NotNil(t, s.Usage())
	assert.Equal(t, 16, s.Usage().TotalTokens)
	require.NotNil(t, got.StreamOptions)
	assert.True(t, got.StreamOptions.IncludeUsage)
	assert.True(t, got.Stream)
}

func TestOpenAIClient_StreamRateLimited(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeOpenAIError(w, http.StatusTooManyRequests, "tokens")
	})

	_, err := c.Stream(context.Background(), Request{User: "x", MaxTokens: 10})
	var ee *EndpointError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
	assert.Equal(t, KindRateLimited, ee.Kind)
}

func TestNewOpenAIClient(t *testing.T) {
	_, err := NewOpenAIClient(ProviderConfig{})
	require.Error(t, err)

	c, err := NewOpenAIClient(ProviderConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.ModelID())

	c, err = NewOpenAIClient(ProviderConfig{APIKey: "k", Model: "gpt-mini", BaseURL: "https://openrouter.ai/api/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-mini", c.ModelID())
}
