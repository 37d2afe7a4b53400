package questionset

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type QuestionSet struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title          string     `gorm:"type:text;not null" json:"title"`
	Subject        string     `gorm:"type:text;not null" json:"subject"`
	Grade          int        `gorm:"not null" json:"grade"`
	QuestionType   string     `gorm:"type:text;not null" json:"question_type"`
	QuestionCount  int        `gorm:"not null" json:"question_count"`
	Difficulty     string     `gorm:"type:text;not null" json:"difficulty"`
	EstimatedTime  int        `gorm:"not null" json:"estimated_time"`
	HasExplanation bool       `gorm:"not null" json:"has_explanation"`
	Status         Status     `gorm:"type:text;not null;index" json:"status"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`
	LogID          *string    `gorm:"type:text" json:"log_id,omitempty"`
	GeneratedAt    *time.Time `json:"generated_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Questions []Question `gorm:"foreignKey:QuestionSetID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionSetID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"question_set_id"`
	QuestionNumber  int            `gorm:"not null" json:"question_number"`
	QuestionText    string         `gorm:"type:text;not null" json:"question_text"`
	Choices         datatypes.JSON `gorm:"type:jsonb;not null" json:"choices"`
	CorrectAnswer   string         `gorm:"type:text;not null" json:"correct_answer"`
	Explanation     *string        `gorm:"type:text" json:"explanation,omitempty"`
	DifficultyScore int            `gorm:"not null" json:"difficulty_score"`
	EstimatedTime   int            `gorm:"not null" json:"estimated_time"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (s *QuestionSet) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
