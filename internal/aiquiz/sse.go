package aiquiz

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &sseWriter{w: w, flusher: flusher}, true
}

// send writes one event frame. Write errors mean the client is gone, which
// the request context reports to the generator.
func (s *sseWriter) send(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Type, payload); err != nil {
		return
	}
	s.flusher.Flush()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
