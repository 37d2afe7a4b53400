package llm

import (
	"context"
	"errors"
	"io"
	"sync"
)

// MockResponse is one scripted reply. Complete returns Text, Stream replays
// Fragments (or Text as a single fragment). StreamErr is returned after the
// fragments are exhausted; Block makes the stream wait for ctx instead of
// ending.
type MockResponse struct {
	Text      string
	Fragments []string
	Usage     *Usage
	Err       error
	StreamErr error
	Block     bool
}

// MockClient replays canned responses in FIFO order and records requests.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	closes    int
	Calls     []Request
}

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

func (m *MockClient) ModelID() string { return "mock" }

func (m *MockClient) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CloseCount returns how many streams have been closed.
func (m *MockClient) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *MockClient) next(req Request) (MockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return MockResponse{}, &EndpointError{Kind: KindServerError, Err: errors.New("mock: no scripted response")}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *MockClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}
	if resp.Block {
		<-ctx.Done()
		return nil, classifyTransport(ctx.Err())
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Completion{Text: resp.Text, Usage: resp.Usage, Model: "mock"}, nil
}

func (m *MockClient) Stream(ctx context.Context, req Request) (Stream, error) {
	resp, err := m.next(req)
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	fragments := resp.Fragments
	if fragments == nil && resp.Text != "" {
		fragments = []string{resp.Text}
	}
	return &mockStream{owner: m, ctx: ctx, resp: resp, fragments: fragments}, nil
}

type mockStream struct {
	owner     *MockClient
	ctx       context.Context
	resp      MockResponse
	fragments []string
	pos       int
	closed    bool
}

func (s *mockStream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", classifyTransport(err)
	}
	if s.pos < len(s.fragments) {
		f := s.fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.resp.Block {
		<-s.ctx.Done()
		return "", classifyTransport(s.ctx.Err())
	}
	if s.resp.StreamErr != nil {
		return "", s.resp.StreamErr
	}
	return "", io.EOF
}

func (s *mockStream) Usage() *Usage { return s.resp.Usage }

func (s *mockStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.owner.mu.Lock()
	s.owner.closes++
	s.owner.mu.Unlock()
	return nil
}
