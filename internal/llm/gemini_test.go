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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGeminiClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewGeminiClient(context.Background(), ProviderConfig{
		APIKey:  "test-key",
		Model:   "gemini-flash",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return c
}

func geminiChunk(text string, usage map[string]any) map[string]any {
	chunk := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	if usage != nil {
		chunk["usageMetadata"] = usage
	}
	return chunk
}

func writeGeminiError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": reason, "status": reason},
	})
}

func TestGeminiClient_Complete(t *testing.T) {
	var path, apiKey string
	var body map[string]any
	c := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiChunk(`{"problems":[]}`, map[string]any{
			"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15,
		}))
	})

	resp, err := c.Complete(context.Background(), Request{System: "sys", User: "user", MaxTokens: 500})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "/models/gemini-2.0-flash:generateContent"), path)
	assert.Equal(t, "test-key", apiKey)
	assert.Contains(t, fmt.Sprint(body["systemInstruction"]), "sys")
	assert.Equal(t, `{"problems":[]}`, resp.Text)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, *resp.Usage)
}

func TestGeminiClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		reason string
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, "UNAUTHENTICATED", KindUnauthorized},
		{http.StatusForbidden, "PERMISSION_DENIED", KindUnauthorized},
		{http.StatusBadRequest, "INVALID_ARGUMENT", KindBadRequest},
		{http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", KindRateLimited},
		{http.StatusInternalServerError, "INTERNAL", KindServerError},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			c := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeGeminiError(w, tt.status, tt.reason)
			})

			_, err := c.Complete(context.Background(), Request{User: "hi", MaxTokens: 10})
			var endpointErr *EndpointError
			require.ErrorAs(t, err, &endpointErr)
			assert.Equal(t, tt.kind, endpointErr.Kind)
			assert.Equal(t, tt.status, endpointErr.StatusCode)
		})
	}
}

func TestMapGeminiError(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		err := mapGeminiError(fmt.Errorf("generate: %w", genai.APIError{Code: 429}))
		var endpointErr *EndpointError
		require.ErrorAs(t, err, &endpointErr)
		assert.Equal(t, KindRateLimited, endpointErr.Kind)
	})

	t.Run("Pointer", func(t *testing.T) {
		err := mapGeminiError(&genai.APIError{Code: 503})
		var endpointErr *EndpointError
		require.ErrorAs(t, err, &endpointErr)
		assert.Equal(t, KindServerError, endpointErr.Kind)
	})

	t.Run("Transport", func(t *testing.T) {
		err := mapGeminiError(context.DeadlineExceeded)
		var endpointErr *EndpointError
		require.ErrorAs(t, err, &endpointErr)
		assert.Equal(t, KindTimeout, endpointErr.Kind)
	})
}

func TestGeminiClient_Stream(t *testing.T) {
	t.Run("Fragments", func(t *testing.T) {
		var path string
		c := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.Header().Set("Content-Type", "text/event-stream")
			for i, part := range []string{`{"problems":`, ``, `[]}`} {
				var usage map[string]any
				if i == 2 {
					usage = map[string]any{"promptTokenCount": 8, "candidatesTokenCount": 4, "totalTokenCount": 12}
				}
				data, _ := json.Marshal(geminiChunk(part, usage))
				fmt.Fprintf(w, "data: %s\n\n", data)
			}
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

		assert.Contains(t, path, ":streamGenerateContent")
		assert.Equal(t, []string{`{"problems":`, `[]}`}, fragments)
		require.NotNil(t, stream.Usage())
		assert.Equal(t, 12, stream.Usage().TotalTokens)
	})

	t.Run("RateLimited", func(t *testing.T) {
		c := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeGeminiError(w, http.StatusTooManyRequests, "RESOURCE_EXHAUSTED")
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
}
