package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropicClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewAnthropicClient(ProviderConfig{
		APIKey:  "test-key",
		Model:   "claude-haiku",
		BaseURL: server.URL + "/",
	})
	require.NoError(t, err)
	return c
}

func writeAnthropicError(w http.ResponseWriter, status int, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": typ, "message": typ},
	})
}

func writeAnthropicEvent(w io.Writer, event string, data map[string]any) {
	payload, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}

func TestAnthropicClient_Complete(t *testing.T) {
	var path, apiKey string
	var body map[string]any
	c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_1",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-haiku-4-5-20251001",
			"content":       []map[string]any{{"type": "text", "text": `{"problems":[]}`}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	})

	resp, err := c.Complete(context.Background(), Request{System: "sys", User: "user", MaxTokens: 500})
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
	assert.EqualValues(t, 500, body["max_tokens"])
	assert.Contains(t, fmt.Sprint(body["system"]), "sys")
	assert.Equal(t, `{"problems":[]}`, resp.Text)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, *resp.Usage)
}

func TestAnthropicClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		typ    string
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, "authentication_error", KindUnauthorized},
		{http.StatusBadRequest, "invalid_request_error", KindBadRequest},
		{http.StatusTooManyRequests, "rate_limit_error", KindRateLimited},
		{http.StatusInternalServerError, "api_error", KindServerError},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeAnthropicError(w, tt.status, tt.typ)
			})

			_, err := c.Complete(context.Background(), Request{User: "hi", MaxTokens: 10})
			var endpointErr *EndpointError
			require.ErrorAs(t, err, &endpointErr)
			assert.Equal(t, tt.kind, endpointErr.Kind)
			assert.Equal(t, tt.status, endpointErr.StatusCode)
			assert.EqualValues(t, 1, calls.Load())
		})
	}
}

func TestAnthropicClient_Stream(t *testing.T) {
	t.Run("FragmentsAndUsage", func(t *testing.T) {
		var body map[string]any
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.Header().Set("Content-Type", "text/event-stream")
			writeAnthropicEvent(w, "message_start", map[string]any{
				"type": "message_start",
				"message": map[string]any{
					"id": "msg_1", "type": "message", "role": "assistant",
					"model": "claude-haiku-4-5-20251001", "content": []any{},
					"stop_reason": nil, "stop_sequence": nil,
					"usage": map[string]any{"input_tokens": 12, "output_tokens": 1},
				},
			})
			writeAnthropicEvent(w, "content_block_start", map[string]any{
				"type": "content_block_start", "index": 0,
				"content_block": map[string]any{"type": "text", "text": ""},
			})
			writeAnthropicEvent(w, "ping", map[string]any{"type": "ping"})
			for _, text := range []string{`{"problems":`, `[]}`} {
				writeAnthropicEvent(w, "content_block_delta", map[string]any{
					"type": "content_block_delta", "index": 0,
					"delta": map[string]any{"type": "text_delta", "text": text},
				})
			}
			writeAnthropicEvent(w, "content_block_stop", map[string]any{"type": "content_block_stop", "index": 0})
			writeAnthropicEvent(w, "message_delta", map[string]any{
				"type":  "message_delta",
				"delta": map[string]any{"stop_reason": "end_turn", "stop_sequence": nil},
				"usage": map[string]any{"output_tokens": 7},
			})
			writeAnthropicEvent(w, "message_stop", map[string]any{"type": "message_stop"})
		})

		stream, err := c.Stream(context.Background(), Request{User: "hi", MaxTokens: 10})
		require.NoError(t, err)
		defer stream.Close()

		var fragments []string
		for {
			text, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			fragments = append(fragments, text)
		}

		assert.Equal(t, true, body["stream"])
		assert.Equal(t, []string{`{"problems":`, `[]}`}, fragments)
		require.NotNil(t, stream.Usage())
		assert.Equal(t, Usage{PromptTokens: 12, CompletionTokens: 7, TotalTokens: 19}, *stream.Usage())
	})

	t.Run("RateLimited", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeAnthropicError(w, http.StatusTooManyRequests, "rate_limit_error")
		})

		stream, err := c.Stream(context.Background(), Request{User: "hi", MaxTokens: 10})
		require.NoError(t, err)
		defer stream.Close()

		_, err = stream.Recv()
		var endpointErr *EndpointError
		require.ErrorAs(t, err, &endpointErr)
		assert.Equal(t, KindRateLimited, endpointErr.Kind)
		assert.Nil(t, stream.Usage())
	})

	t.Run("NoUsageReported", func(t *testing.T) {
		c := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			writeAnthropicEvent(w, "content_block_delta", map[string]any{
				"type": "content_block_delta", "index": 0,
				"delta": map[string]any{"type": "text_delta", "text": "hi"},
			})
		})

		stream, err := c.Stream(context.Background(), Request{User: "hi", MaxTokens: 10})
		require.NoError(t, err)
		defer stream.Close()

		text, err := stream.Recv()
		require.NoError(t, err)
		assert.Equal(t, "hi", text)
		_, err = stream.Recv()
		assert.ErrorIs(t, err, io.EOF)
		assert.Nil(t, stream.Usage())
	})
}
