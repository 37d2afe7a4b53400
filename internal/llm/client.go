// Package llm wraps the chat-completion SDKs behind a small blocking and
// streaming interface used by the problem generator.
package llm

import "context"

// Request is a single system+user exchange.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

type Completion struct {
	Text  string
	Usage *Usage
	Model string
}

// Stream yields text fragments in transport order. Recv returns io.EOF once
// the provider has finished. Usage is only meaningful after io.EOF and is nil
// when the provider did not report counts.
type Stream interface {
	Recv() (string, error)
	Usage() *Usage
	Close() error
}

// Client is safe for concurrent use by independent requests.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	Stream(ctx context.Context, req Request) (Stream, error)
	ModelID() string
}

// resolveModel maps a friendly model name to a provider model ID.
func resolveModel(name string, models map[string]string, fallback string) string {
	if name == "" {
		name = fallback
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
