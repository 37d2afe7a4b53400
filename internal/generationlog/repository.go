package generationlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	FindSince(ctx context.Context, userID *uuid.UUID, since time.Time, limit int) ([]*Entry, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int64, error)
	GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// statsColumns leaves out the request, response and raw text bodies.
var statsColumns = []string{
	"id", "user_id", "model_used", "prompt_tokens", "completion_tokens", "total_tokens",
	"tokens_estimated", "response_time_ms", "status", "api_endpoint",
	"subject", "grade", "question_type", "question_count", "difficulty", "created_at",
}

func (r *repository) Create(ctx context.Context, e *Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// FindSince returns entries created at or after since, newest first. A nil
// userID spans every caller; limit <= 0 means no limit.
func (r *repository) FindSince(ctx context.Context, userID *uuid.UUID, since time.Time, limit int) ([]*Entry, error) {
	q := r.db.WithContext(ctx).
		Select(statsColumns).
		Where("created_at >= ?", since).
		Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []*Entry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int64, error) {
	base := r.db.WithContext(ctx).Model(&Entry{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*Entry
	if err := base.
		Select(statsColumns).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*Entry, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var e Entry
	if err := q.First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}
