package generationlog

import (
	"time"

	"github.com/google/uuid"
)

// Summary is the list view of an entry, without request or response bodies.
type Summary struct {
	ID             uuid.UUID `json:"id"`
	Subject        string    `json:"subject"`
	Grade          int       `json:"grade"`
	QuestionType   string    `json:"question_type"`
	QuestionCount  int       `json:"question_count"`
	Difficulty     string    `json:"difficulty"`
	Status         Status    `json:"status"`
	TotalTokens    *int      `json:"total_tokens"`
	ResponseTimeMs *int64    `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToSummary(e *Entry) Summary {
	return Summary{
		ID:             e.ID,
		Subject:        e.Subject,
		Grade:          e.Grade,
		QuestionType:   e.QuestionType,
		QuestionCount:  e.QuestionCount,
		Difficulty:     e.Difficulty,
		Status:         e.Status,
		TotalTokens:    e.TotalTokens,
		ResponseTimeMs: e.ResponseTimeMs,
		CreatedAt:      e.CreatedAt,
	}
}

type Page struct {
	Data   []Summary `json:"data"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}

type Aggregate struct {
	TotalGenerations    int   `json:"totalGenerations"`
	TotalTokensUsed     int   `json:"totalTokensUsed"`
	AverageResponseTime int64 `json:"averageResponseTime"`
	SuccessCount        int   `json:"successCount"`
	ErrorCount          int   `json:"errorCount"`
}

type UserStats struct {
	Period string `json:"period"`
	Days   int    `json:"days"`
	Aggregate
	SubjectBreakdown    map[string]int `json:"subjectBreakdown"`
	GradeBreakdown      map[string]int `json:"gradeBreakdown"`
	DifficultyBreakdown map[string]int `json:"difficultyBreakdown"`
	RecentActivity      []Summary      `json:"recentActivity"`
}

type DailyActivity struct {
	Count  int `json:"count"`
	Tokens int `json:"tokens"`
}

type GlobalStats struct {
	Period string `json:"period"`
	Days   int    `json:"days"`
	Aggregate
	SuccessRate          int                      `json:"successRate"`
	UniqueUsers          int                      `json:"uniqueUsers"`
	AnonymousGenerations int                      `json:"anonymousGenerations"`
	APIEndpointUsage     map[string]int           `json:"apiEndpointUsage"`
	DailyActivity        map[string]DailyActivity `json:"dailyActivity"`
	ModelUsage           map[string]int           `json:"modelUsage"`
	EstimatedCostUSD     float64                  `json:"estimatedCostUsd"`
}
