package llm

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/edugen-api/internal/config"
)

// WithLogging returns a Client that logs each call's latency and outcome.
func WithLogging(next Client) Client {
	return &loggingClient{next: next}
}

type loggingClient struct {
	next Client
}

func (c *loggingClient) ModelID() string { return c.next.ModelID() }

func (c *loggingClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()
	resp, err := c.next.Complete(ctx, req)

	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"model":      c.next.ModelID(),
		"latency_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		log.WithError(err).Warn("Model completion failed")
		return nil, err
	}
	if resp.Usage != nil {
		log = log.WithField("total_tokens", resp.Usage.TotalTokens)
	}
	log.Debug("Model completion finished")
	return resp, nil
}

func (c *loggingClient) Stream(ctx context.Context, req Request) (Stream, error) {
	start := time.Now()
	s, err := c.next.Stream(ctx, req)
	if err != nil {
		config.WithContext(ctx).WithError(err).WithField("model", c.next.ModelID()).Warn("Model stream failed to open")
		return nil, err
	}
	return &loggingStream{Stream: s, ctx: ctx, model: c.next.ModelID(), start: start}, nil
}

type loggingStream struct {
	Stream
	ctx       context.Context
	model     string
	start     time.Time
	fragments int
}

func (s *loggingStream) Recv() (string, error) {
	text, err := s.Stream.Recv()
	if err == nil {
		s.fragments++
		return text, nil
	}

	log := config.WithContext(s.ctx).WithFields(logrus.Fields{
		"model":      s.model,
		"fragments":  s.fragments,
		"latency_ms": time.Since(s.start).Milliseconds(),
	})
	if errors.Is(err, io.EOF) {
		log.Debug("Model stream finished")
	} else {
		log.WithError(err).Warn("Model stream failed")
	}
	return text, err
}

// Unwrap returns the client beneath the logging decorator.
func Unwrap(c Client) Client {
	if l, ok := c.(*loggingClient); ok {
		return l.next
	}
	return c
}
