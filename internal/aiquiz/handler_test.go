package aiquiz_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/llm"
)

const scenarioBody = `{"subject":"English","grade":3,"questionType":"curriculum","questionCount":5,"difficulty":"hard","includeExplanation":true}`

func newTestRouter(client llm.Client, rec aiquiz.Recorder) http.Handler {
	c := aiquiz.NewAIQuizContainer(client, rec, aiquiz.DefaultOptions())
	return aiquiz.Routes(c.Handler)
}

type sseFrame struct {
	event string
	data  string
}

func parseSSE(body string) []sseFrame {
	var frames []sseFrame
	for _, block := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		var f sseFrame
		for _, line := range strings.Split(block, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				f.event = v
			}
			if v, ok := strings.CutPrefix(line, "data: "); ok {
				f.data = v
			}
		}
		frames = append(frames, f)
	}
	return frames
}

func TestGenerateProblemsHandler(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		client := llm.NewMockClient(llm.MockResponse{Text: validSetJSON(t, 5), Usage: &llm.Usage{TotalTokens: 42}})
		rec := &fakeRecorder{}
		router := newTestRouter(client, rec)

		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(scenarioBody))
		req.Header.Set("User-Agent", "handler-test")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var result aiquiz.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Len(t, result.Problems, 5)
		assert.Equal(t, 42, result.Metadata.Usage.TotalTokens)

		attempts := rec.all()
		require.Len(t, attempts, 1)
		assert.Equal(t, "handler-test", attempts[0].Caller.UserAgent)
		assert.Equal(t, "/api/problems/generate", attempts[0].Caller.Endpoint)
		assert.True(t, attempts[0].Caller.Anonymous())
	})

	t.Run("BadInput", func(t *testing.T) {
		client := llm.NewMockClient()
		router := newTestRouter(client, &fakeRecorder{})

		body := strings.Replace(scenarioBody, `"grade":3`, `"grade":15`, 1)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var eb config.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eb))
		assert.Equal(t, "invalid_input", eb.Error)
		assert.Equal(t, 0, client.CallCount())
	})

	t.Run("ModelGarbage", func(t *testing.T) {
		client := llm.NewMockClient(llm.MockResponse{Text: "nothing useful"})
		router := newTestRouter(client, &fakeRecorder{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(scenarioBody)))

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var eb config.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eb))
		assert.Equal(t, "no_json_found", eb.Error)
		assert.True(t, eb.Retryable)
	})

	t.Run("RateLimited", func(t *testing.T) {
		client := llm.NewMockClient(llm.MockResponse{Err: &llm.EndpointError{Kind: llm.KindRateLimited, StatusCode: 429}})
		router := newTestRouter(client, &fakeRecorder{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(scenarioBody)))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestStreamProblemsHandler(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		client := llm.NewMockClient(llm.MockResponse{Fragments: splitInto(validSetJSON(t, 5), 8)})
		router := newTestRouter(client, &fakeRecorder{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate/stream", strings.NewReader(scenarioBody)))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

		frames := parseSSE(w.Body.String())
		require.NotEmpty(t, frames)
		assert.Equal(t, "connected", frames[0].event)
		last := frames[len(frames)-1]
		assert.Equal(t, "complete", last.event)

		var e aiquiz.Event
		require.NoError(t, json.Unmarshal([]byte(last.data), &e))
		require.NotNil(t, e.Data)
		assert.Len(t, e.Data.Problems, 5)
	})

	t.Run("ErrorEvent", func(t *testing.T) {
		client := llm.NewMockClient(llm.MockResponse{Fragments: []string{"no ", "json"}})
		router := newTestRouter(client, &fakeRecorder{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate/stream", strings.NewReader(scenarioBody)))

		frames := parseSSE(w.Body.String())
		last := frames[len(frames)-1]
		assert.Equal(t, "error", last.event)

		var e aiquiz.Event
		require.NoError(t, json.Unmarshal([]byte(last.data), &e))
		assert.Equal(t, "no_json_found", e.Error)
		assert.True(t, e.Retryable)
	})

	t.Run("BadInputIsPlainJSON", func(t *testing.T) {
		router := newTestRouter(llm.NewMockClient(), &fakeRecorder{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate/stream", strings.NewReader(`{"subject":""}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})
}

func TestOptionsHandler(t *testing.T) {
	router := newTestRouter(llm.NewMockClient(), &fakeRecorder{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/options", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var opts aiquiz.OptionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Len(t, opts.Subjects, 8)
	assert.Len(t, opts.Difficulties, 3)
	assert.Equal(t, "보통", opts.Difficulties[1].Label)
	assert.Equal(t, 12, opts.MaxGrade)
	assert.Equal(t, "mock", opts.Model)
}
