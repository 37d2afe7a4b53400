package aiquiz

import (
	"time"

	"github.com/google/uuid"
)

type Problem struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// ProblemSet carries the request metadata alongside the validated problems.
type ProblemSet struct {
	Subject       string     `json:"subject"`
	Grade         int        `json:"grade"`
	QuestionType  string     `json:"question_type"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionCount int        `json:"question_count"`
	Problems      []Problem  `json:"problems"`
}

type Usage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens"`
	TotalTokens      int  `json:"totalTokens"`
	Estimated        bool `json:"estimated,omitempty"`
}

type Metadata struct {
	Model          string    `json:"model"`
	Usage          Usage     `json:"usage"`
	Timestamp      time.Time `json:"timestamp"`
	ResponseTimeMs int64     `json:"responseTimeMs"`
	LogID          string    `json:"logId,omitempty"`
	Partial        bool      `json:"partial,omitempty"`
}

type Result struct {
	ProblemSet
	Metadata Metadata `json:"metadata"`
}

// Caller identifies who asked for a generation and through which surface.
type Caller struct {
	UserID    *uuid.UUID
	Endpoint  string
	UserAgent string
	IPAddress string
}

func (c Caller) Anonymous() bool {
	return c.UserID == nil
}
