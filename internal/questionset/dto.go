package questionset

import "time"

type CreateQuestionSetDTO struct {
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	Grade          int    `json:"grade"`
	QuestionType   string `json:"questionType"`
	QuestionCount  int    `json:"questionCount"`
	Difficulty     string `json:"difficulty"`
	EstimatedTime  int    `json:"estimatedTime"`
	HasExplanation bool   `json:"hasExplanation"`
}

type ListResponse struct {
	Data       []*QuestionSet `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"totalPages"`
}

type StatusResponse struct {
	ID             string     `json:"id"`
	Status         Status     `json:"status"`
	QuestionsCount int        `json:"questionsCount"`
	ErrorMessage   *string    `json:"errorMessage,omitempty"`
	GeneratedAt    *time.Time `json:"generatedAt,omitempty"`
}
