package generationlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is one generation attempt. Rows are only ever inserted.
type Entry struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	RequestData  datatypes.JSON `gorm:"type:jsonb;not null" json:"request_data"`
	ResponseData datatypes.JSON `gorm:"type:jsonb" json:"response_data"`
	RawResponse  *string        `gorm:"type:text" json:"raw_response"`
	ModelUsed    string         `gorm:"type:text;not null" json:"model_used"`

	PromptTokens     *int `json:"prompt_tokens"`
	CompletionTokens *int `json:"completion_tokens"`
	TotalTokens      *int `json:"total_tokens"`
	TokensEstimated  bool `gorm:"not null;default:false" json:"tokens_estimated"`

	ResponseTimeMs *int64  `json:"response_time_ms"`
	Status         Status  `gorm:"type:text;not null;index" json:"status"`
	ErrorKind      *string `gorm:"type:text" json:"error_kind"`
	ErrorMessage   *string `gorm:"type:text" json:"error_message"`

	APIEndpoint string `gorm:"type:text" json:"api_endpoint"`
	UserAgent   string `gorm:"type:text" json:"user_agent"`
	IPAddress   string `gorm:"type:text" json:"ip_address"`

	Subject            string `gorm:"type:text;index" json:"subject"`
	Grade              int    `json:"grade"`
	QuestionType       string `gorm:"type:text" json:"question_type"`
	QuestionCount      int    `json:"question_count"`
	Difficulty         string `gorm:"type:text" json:"difficulty"`
	IncludeExplanation bool   `json:"include_explanation"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Entry) TableName() string {
	return "problem_generation_logs"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Entry) tokens() int {
	if e.TotalTokens == nil {
		return 0
	}
	return *e.TotalTokens
}

func (e *Entry) responseTime() int64 {
	if e.ResponseTimeMs == nil {
		return 0
	}
	return *e.ResponseTimeMs
}
