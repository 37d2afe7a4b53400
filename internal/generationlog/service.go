package generationlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/edugen-api/internal/aiquiz"
	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/llm"
)

var ErrLogNotFound = errors.New("generation log not found")

const (
	DefaultUserStatsDays   = 30
	DefaultGlobalStatsDays = 7
	DefaultGlobalLimit     = 100
	DefaultPageLimit       = 20
	MaxPageLimit           = 100
	RecentActivitySize     = 10

	unknownKey = "unknown"
)

type Service interface {
	aiquiz.Recorder
	Append(ctx context.Context, e *Entry) (string, error)
	StatsForUser(ctx context.Context, userID uuid.UUID, days int) (*UserStats, error)
	GlobalStats(ctx context.Context, days, limit int) (*GlobalStats, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*Page, error)
	GetByID(ctx context.Context, id string, userID *uuid.UUID) (*Entry, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// NewServiceWithClock is NewService with an injectable clock for the
// trailing windows and the entry timestamps.
func NewServiceWithClock(repo Repository, now func() time.Time) Service {
	return &service{repo: repo, now: now}
}

func (s *service) Append(ctx context.Context, e *Entry) (string, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Create(ctx, e); err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to insert generation log")
		return "", err
	}
	return e.ID.String(), nil
}

func (s *service) RecordAttempt(ctx context.Context, a aiquiz.Attempt) (string, error) {
	e, err := EntryFromAttempt(a)
	if err != nil {
		return "", err
	}
	id, err := s.Append(ctx, e)
	if err != nil {
		return "", err
	}

	config.WithContext(ctx).WithFields(logrus.Fields{
		"log_id": id,
		"status": e.Status,
	}).Debug("Generation log saved")
	return id, nil
}

// EntryFromAttempt maps a finished attempt onto a log row, copying the
// request fields into the searchable columns.
func EntryFromAttempt(a aiquiz.Attempt) (*Entry, error) {
	req, err := json.Marshal(a.Request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ms := a.ResponseTime.Milliseconds()
	e := &Entry{
		UserID:             a.Caller.UserID,
		RequestData:        req,
		ModelUsed:          a.Model,
		ResponseTimeMs:     &ms,
		Status:             StatusSuccess,
		APIEndpoint:        a.Caller.Endpoint,
		UserAgent:          a.Caller.UserAgent,
		IPAddress:          a.Caller.IPAddress,
		Subject:            a.Request.Subject,
		Grade:              a.Request.Grade,
		QuestionType:       a.Request.QuestionType,
		QuestionCount:      a.Request.QuestionCount,
		Difficulty:         string(a.Request.Difficulty),
		IncludeExplanation: a.Request.IncludeExplanation,
	}
	if a.RawResponse != "" {
		raw := a.RawResponse
		e.RawResponse = &raw
	}
	if a.Usage != nil {
		total := a.Usage.TotalTokens
		e.TotalTokens = &total
		e.TokensEstimated = a.Usage.Estimated
		if !a.Usage.Estimated {
			prompt, completion := a.Usage.PromptTokens, a.Usage.CompletionTokens
			e.PromptTokens = &prompt
			e.CompletionTokens = &completion
		}
	}

	if a.Err != nil {
		kind, msg := aiquiz.ErrorKind(a.Err), a.Err.Error()
		e.Status = StatusError
		e.ErrorKind = &kind
		e.ErrorMessage = &msg
		return e, nil
	}

	if a.Result != nil {
		resp, err := json.Marshal(a.Result.ProblemSet)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		e.ResponseData = resp
	}
	return e, nil
}

func (s *service) StatsForUser(ctx context.Context, userID uuid.UUID, days int) (*UserStats, error) {
	if days <= 0 {
		days = DefaultUserStatsDays
	}

	entries, err := s.repo.FindSince(ctx, &userID, s.windowStart(days), 0)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to load user generation logs")
		return nil, err
	}

	stats := &UserStats{
		Period:              period(days),
		Days:                days,
		Aggregate:           aggregate(entries),
		SubjectBreakdown:    map[string]int{},
		GradeBreakdown:      map[string]int{},
		DifficultyBreakdown: map[string]int{},
		RecentActivity:      make([]Summary, 0, min(len(entries), RecentActivitySize)),
	}
	for i, e := range entries {
		stats.SubjectBreakdown[orUnknown(e.Subject)]++
		stats.GradeBreakdown[gradeKey(e.Grade)]++
		stats.DifficultyBreakdown[orUnknown(e.Difficulty)]++
		if i < RecentActivitySize {
			stats.RecentActivity = append(stats.RecentActivity, ToSummary(e))
		}
	}
	return stats, nil
}

func (s *service) GlobalStats(ctx context.Context, days, limit int) (*GlobalStats, error) {
	if days <= 0 {
		days = DefaultGlobalStatsDays
	}
	if limit <= 0 {
		limit = DefaultGlobalLimit
	}

	entries, err := s.repo.FindSince(ctx, nil, s.windowStart(days), limit)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to load generation logs")
		return nil, err
	}

	stats := &GlobalStats{
		Period:           period(days),
		Days:             days,
		Aggregate:        aggregate(entries),
		APIEndpointUsage: map[string]int{},
		DailyActivity:    map[string]DailyActivity{},
		ModelUsage:       map[string]int{},
	}
	if n := len(entries); n > 0 {
		stats.SuccessRate = int(math.Round(float64(stats.SuccessCount) / float64(n) * 100))
	}

	users := map[uuid.UUID]struct{}{}
	cost := 0.0
	for _, e := range entries {
		if e.UserID != nil {
			users[*e.UserID] = struct{}{}
		} else {
			stats.AnonymousGenerations++
		}
		stats.APIEndpointUsage[orUnknown(e.APIEndpoint)]++
		stats.ModelUsage[orUnknown(e.ModelUsed)]++

		day := e.CreatedAt.UTC().Format(time.DateOnly)
		bucket := stats.DailyActivity[day]
		bucket.Count++
		bucket.Tokens += e.tokens()
		stats.DailyActivity[day] = bucket

		if e.PromptTokens != nil && e.CompletionTokens != nil {
			if price := llm.LookupCost(e.ModelUsed); price != nil {
				cost += price.Cost(*e.PromptTokens, *e.CompletionTokens)
			}
		}
	}
	stats.UniqueUsers = len(users)
	stats.EstimatedCostUSD = math.Round(cost*1e6) / 1e6
	return stats, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)
	offset = max(offset, 0)

	entries, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list generation logs")
		return nil, err
	}

	page := &Page{Data: make([]Summary, 0, len(entries)), Total: total, Limit: limit, Offset: offset}
	for _, e := range entries {
		page.Data = append(page.Data, ToSummary(e))
	}
	return page, nil
}

// GetByID fetches one entry. With a userID, entries owned by someone else
// resolve to ErrLogNotFound exactly like missing ones.
func (s *service) GetByID(ctx context.Context, id string, userID *uuid.UUID) (*Entry, error) {
	logID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrLogNotFound
	}

	e, err := s.repo.GetByID(ctx, logID, userID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to load generation log")
		return nil, err
	}
	if e == nil {
		return nil, ErrLogNotFound
	}
	return e, nil
}

func (s *service) windowStart(days int) time.Time {
	return s.now().UTC().AddDate(0, 0, -days)
}

func aggregate(entries []*Entry) Aggregate {
	var a Aggregate
	var totalTime int64
	for _, e := range entries {
		a.TotalGenerations++
		a.TotalTokensUsed += e.tokens()
		totalTime += e.responseTime()
		switch e.Status {
		case StatusSuccess:
			a.SuccessCount++
		case StatusError:
			a.ErrorCount++
		}
	}
	if a.TotalGenerations > 0 {
		a.AverageResponseTime = int64(math.Round(float64(totalTime) / float64(a.TotalGenerations)))
	}
	return a
}

func period(days int) string {
	return fmt.Sprintf("last %d days", days)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownKey
	}
	return s
}

func gradeKey(g int) string {
	if g <= 0 {
		return unknownKey
	}
	return strconv.Itoa(g)
}
