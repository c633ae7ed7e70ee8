package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/twistedwarden/esmv2-sub001/internal/models"
)

// EvaluationRepository defines persistence operations for interview evaluations.
type EvaluationRepository interface {
	GetByScheduleID(ctx context.Context, scheduleID uint) (models.InterviewEvaluation, error)
	ExistsForSchedule(ctx context.Context, scheduleID uint) (bool, error)
	Create(ctx context.Context, evaluation *models.InterviewEvaluation) error
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates a GORM-backed evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) GetByScheduleID(ctx context.Context, scheduleID uint) (models.InterviewEvaluation, error) {
	var evaluation models.InterviewEvaluation
	if err := r.db.WithContext(ctx).Where("schedule_id = ?", scheduleID).First(&evaluation).Error; err != nil {
		return models.InterviewEvaluation{}, err
	}

	return evaluation, nil
}

func (r *evaluationRepository) ExistsForSchedule(ctx context.Context, scheduleID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InterviewEvaluation{}).
		Where("schedule_id = ?", scheduleID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.InterviewEvaluation) error {
	return r.db.WithContext(ctx).Create(evaluation).Error
}
