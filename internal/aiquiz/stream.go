package aiquiz

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Stream runs one streaming session. Events are delivered synchronously in
// the order the model produced them. When ctx is canceled the session stops
// quietly: the model stream is closed, no terminal callback runs and nothing
// is logged.
func (s *service) Stream(ctx context.Context, req GenerationRequest, caller Caller, cb StreamCallbacks) {
	sess := &session{cb: cb}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		sess.fail(err)
		return
	}

	log := requestLogger(ctx, req, caller).WithField("stream", true)
	log.Info("Streaming problem generation")

	sess.emit(Event{Type: EventStart, Message: "starting problem generation", Timestamp: s.now().UTC()})

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	model := s.client.ModelID()
	stream, err := s.client.Stream(callCtx, s.llmRequest(BuildPrompt(req, s.opts.Language)))
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Streaming generation canceled by caller")
			return
		}
		err = asEndpointError(err)
		s.record(ctx, log, Attempt{Caller: caller, Request: req, Model: model, ResponseTime: time.Since(start), Err: err})
		sess.fail(err)
		return
	}
	defer stream.Close()

	sess.emit(Event{Type: EventProgress, Message: "waiting for the model", Timestamp: s.now().UTC()})

	var full strings.Builder
	fragments := 0
	for {
		text, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if ctx.Err() != nil {
			log.WithField("fragments", fragments).Info("Streaming generation canceled by caller")
			return
		}
		if err != nil {
			err = asEndpointError(err)
			s.record(ctx, log, Attempt{
				Caller: caller, Request: req, RawResponse: full.String(), Model: model,
				Usage: estimatedUsage(fragments), ResponseTime: time.Since(start), Err: err,
			})
			sess.fail(err)
			return
		}

		if fragments == 0 {
			sess.emit(Event{Type: EventStreamStart, Message: "model started responding", Timestamp: s.now().UTC()})
		}
		fragments++
		full.WriteString(text)
		sess.emit(Event{
			Type:         EventChunk,
			Content:      text,
			FullResponse: full.String(),
			TokenCount:   fragments,
			Timestamp:    s.now().UTC(),
		})
	}
	if ctx.Err() != nil {
		return
	}
	elapsed := time.Since(start)

	sess.emit(Event{Type: EventParsing, Message: "validating generated problems", Timestamp: s.now().UTC()})

	raw := full.String()
	usage := exactUsage(stream.Usage())
	if usage == nil {
		usage = estimatedUsage(fragments)
	}

	set, err := ValidateResponse(raw, req)
	partial := false
	if err == nil {
		partial, err = s.checkCount(set, req)
	}
	if err != nil {
		s.record(ctx, log, Attempt{
			Caller: caller, Request: req, RawResponse: raw, Model: model,
			Usage: usage, ResponseTime: elapsed, Err: err,
		})
		sess.fail(err)
		return
	}

	result := s.newResult(set, model, usage, elapsed, partial)
	result.Metadata.LogID = s.record(ctx, log, Attempt{
		Caller: caller, Request: req, Result: result, RawResponse: raw,
		Model: model, Usage: usage, ResponseTime: elapsed,
	})
	sess.complete(result)
}

// estimatedUsage stands in when the provider reports no counts; each
// fragment is counted as one token.
func estimatedUsage(fragments int) *Usage {
	return &Usage{TotalTokens: fragments, Estimated: true}
}
