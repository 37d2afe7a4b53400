package questionset

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionSetRepository interface {
	Create(ctx context.Context, s *QuestionSet) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*QuestionSet, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*QuestionSet, int64, error)
	MarkGenerating(ctx context.Context, id, userID uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	ReplaceQuestions(ctx context.Context, id uuid.UUID, questions []*Question, logID string, at time.Time) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type questionSetRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) QuestionSetRepository {
	return &questionSetRepository{db: db}
}

func (r *questionSetRepository) Create(ctx context.Context, s *QuestionSet) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *questionSetRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*QuestionSet, error) {
	var set QuestionSet
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC")
		}).
		First(&set, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

func (r *questionSetRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*QuestionSet, int64, error) {
	base := r.db.WithContext(ctx).Model(&QuestionSet{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sets []*QuestionSet
	if err := base.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sets).Error; err != nil {
		return nil, 0, err
	}
	return sets, total, nil
}

// MarkGenerating moves a set into generating unless a run is already in
// flight. It reports false when no row changed.
func (r *questionSetRepository) MarkGenerating(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&QuestionSet{}).
		Where("id = ? AND user_id = ? AND status <> ?", id, userID, StatusGenerating).
		Updates(map[string]any{"status": StatusGenerating, "error_message": nil})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *questionSetRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).Model(&QuestionSet{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": StatusFailed, "error_message": message}).Error
}

func (r *questionSetRepository) ReplaceQuestions(ctx context.Context, id uuid.UUID, questions []*Question, logID string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_set_id = ?", id).Delete(&Question{}).Error; err != nil {
			return err
		}
		for _, q := range questions {
			q.QuestionSetID = id
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		updates := map[string]any{"status": StatusCompleted, "error_message": nil, "generated_at": at}
		if logID != "" {
			updates["log_id"] = logID
		}
		return tx.Model(&QuestionSet{}).Where("id = ?", id).Updates(updates).Error
	})
}

func (r *questionSetRepository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&QuestionSet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("question_set_id = ?", id).Delete(&Question{}).Error
	})
	return deleted, err
}
