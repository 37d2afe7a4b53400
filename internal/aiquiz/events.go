package aiquiz

import "time"

type EventType string

const (
	EventConnected   EventType = "connected"
	EventStart       EventType = "start"
	EventProgress    EventType = "progress"
	EventStreamStart EventType = "stream_start"
	EventChunk       EventType = "chunk"
	EventParsing     EventType = "parsing"
	EventComplete    EventType = "complete"
	EventError       EventType = "error"
)

type Event struct {
	Type         EventType `json:"type"`
	Message      string    `json:"message,omitempty"`
	Content      string    `json:"content,omitempty"`
	FullResponse string    `json:"fullResponse,omitempty"`
	TokenCount   int       `json:"tokenCount,omitempty"`
	Data         *Result   `json:"data,omitempty"`
	Error        string    `json:"error,omitempty"`
	Retryable    bool      `json:"retryable,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// StreamCallbacks receive a streaming session's events on the caller's
// goroutine. Exactly one of OnComplete or OnError runs per session, and
// OnChunk never runs after it. A canceled session invokes neither.
type StreamCallbacks struct {
	OnChunk    func(Event)
	OnComplete func(*Result)
	OnError    func(error)
}

type session struct {
	cb   StreamCallbacks
	done bool
}

func (s *session) emit(e Event) {
	if s.done || s.cb.OnChunk == nil {
		return
	}
	s.cb.OnChunk(e)
}

func (s *session) complete(r *Result) {
	if s.done {
		return
	}
	s.done = true
	if s.cb.OnComplete != nil {
		s.cb.OnComplete(r)
	}
}

func (s *session) fail(err error) {
	if s.done {
		return
	}
	s.done = true
	if s.cb.OnError != nil {
		s.cb.OnError(err)
	}
}
