package aiquiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/llm"
)

// Attempt is everything known about one finished generation attempt.
type Attempt struct {
	Caller       Caller
	Request      GenerationRequest
	Result       *Result
	RawResponse  string
	Model        string
	Usage        *Usage
	ResponseTime time.Duration
	Err          error
}

func (a Attempt) Succeeded() bool { return a.Err == nil }

// Recorder persists one entry per attempt and returns its id.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) (string, error)
}

type Options struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	Language    string
	// AllowPartial accepts batches whose size differs from the requested
	// count. Over-delivery is truncated and the result is flagged partial.
	AllowPartial bool
}

func DefaultOptions() Options {
	return Options{
		Timeout:     60 * time.Second,
		MaxTokens:   3000,
		Temperature: 0.8,
		Language:    DefaultLanguage,
	}
}

type Service interface {
	Generate(ctx context.Context, req GenerationRequest, caller Caller) (*Result, error)
	Stream(ctx context.Context, req GenerationRequest, caller Caller, cb StreamCallbacks)
	ModelID() string
}

type service struct {
	client   llm.Client
	recorder Recorder
	opts     Options
	now      func() time.Time
}

func NewService(client llm.Client, recorder Recorder, opts Options) Service {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.Language == "" {
		opts.Language = defaults.Language
	}
	return &service{client: client, recorder: recorder, opts: opts, now: time.Now}
}

func (s *service) ModelID() string {
	return s.client.ModelID()
}

func (s *service) llmRequest(p Prompt) llm.Request {
	return llm.Request{
		System:      p.System,
		User:        p.User,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	}
}

func (s *service) Generate(ctx context.Context, req GenerationRequest, caller Caller) (*Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := requestLogger(ctx, req, caller)
	log.Info("Generating problems")

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	completion, err := s.client.Complete(callCtx, s.llmRequest(BuildPrompt(req, s.opts.Language)))
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Generation canceled by caller")
			return nil, ctx.Err()
		}
		err = asEndpointError(err)
		s.record(ctx, log, Attempt{Caller: caller, Request: req, Model: s.client.ModelID(), ResponseTime: elapsed, Err: err})
		return nil, err
	}

	// Configured id, not the provider's dated variant; pricing keys on it.
	model := s.client.ModelID()
	usage := exactUsage(completion.Usage)

	set, err := ValidateResponse(completion.Text, req)
	partial := false
	if err == nil {
		partial, err = s.checkCount(set, req)
	}
	if err != nil {
		s.record(ctx, log, Attempt{
			Caller: caller, Request: req, RawResponse: completion.Text, Model: model,
			Usage: usage, ResponseTime: elapsed, Err: err,
		})
		return nil, err
	}

	result := s.newResult(set, model, usage, elapsed, partial)
	result.Metadata.LogID = s.record(ctx, log, Attempt{
		Caller: caller, Request: req, Result: result, RawResponse: completion.Text,
		Model: model, Usage: usage, ResponseTime: elapsed,
	})
	return result, nil
}

func (s *service) newResult(set *ProblemSet, model string, usage *Usage, elapsed time.Duration, partial bool) *Result {
	r := &Result{
		ProblemSet: *set,
		Metadata: Metadata{
			Model:          model,
			Timestamp:      s.now().UTC(),
			ResponseTimeMs: elapsed.Milliseconds(),
			Partial:        partial,
		},
	}
	if usage != nil {
		r.Metadata.Usage = *usage
	}
	return r
}

// checkCount applies the batch size policy. An empty batch is never accepted.
func (s *service) checkCount(set *ProblemSet, req GenerationRequest) (bool, error) {
	got := len(set.Problems)
	if got == 0 {
		return false, &ValidationError{Kind: InvalidProblem, Index: 0, Reason: "model returned no problems"}
	}
	if got == req.QuestionCount {
		return false, nil
	}
	if !s.opts.AllowPartial {
		return false, &ValidationError{
			Kind:   InvalidProblem,
			Index:  min(got, req.QuestionCount),
			Reason: fmt.Sprintf("expected %d problems, got %d", req.QuestionCount, got),
		}
	}
	if got > req.QuestionCount {
		set.Problems = set.Problems[:req.QuestionCount]
	}
	return true, nil
}

// record writes the attempt on a context detached from the caller so a
// disconnect after the terminal outcome does not lose the entry. Failures to
// persist are logged and never change the generation outcome.
func (s *service) record(ctx context.Context, log *logrus.Entry, a Attempt) string {
	entry := log.WithFields(logrus.Fields{
		"model":            a.Model,
		"response_time_ms": a.ResponseTime.Milliseconds(),
	})
	if a.Usage != nil {
		entry = entry.WithField("total_tokens", a.Usage.TotalTokens)
	}
	if a.Err != nil {
		entry.WithError(a.Err).WithField("error_kind", ErrorKind(a.Err)).Warn("Problem generation failed")
	} else {
		entry.WithField("problems", len(a.Result.Problems)).Info("Problem generation succeeded")
	}

	if s.recorder == nil {
		return ""
	}
	id, err := s.recorder.RecordAttempt(context.WithoutCancel(ctx), a)
	if err != nil {
		log.WithError(err).Error("Failed to write generation log entry")
		return ""
	}
	return id
}

func requestLogger(ctx context.Context, req GenerationRequest, caller Caller) *logrus.Entry {
	return config.WithContext(ctx).WithFields(logrus.Fields{
		"subject":    req.Subject,
		"grade":      req.Grade,
		"difficulty": req.Difficulty,
		"count":      req.QuestionCount,
		"endpoint":   caller.Endpoint,
		"anonymous":  caller.Anonymous(),
	})
}

func exactUsage(u *llm.Usage) *Usage {
	if u == nil {
		return nil
	}
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	return &Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens, TotalTokens: total}
}

// asEndpointError guarantees the caller sees an *llm.EndpointError for any
// failure on the way to the model.
func asEndpointError(err error) error {
	var ee *llm.EndpointError
	if errors.As(err, &ee) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.EndpointError{Kind: llm.KindTimeout, Err: err}
	}
	return &llm.EndpointError{Kind: llm.KindNetworkError, Err: err}
}
