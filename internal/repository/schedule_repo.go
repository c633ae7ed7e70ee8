package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/twistedwarden/esmv2-sub001/internal/models"
)

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	InterviewerID uint
	ApplicationID uint
	Date          string
	Status        string
}

// ScheduleRepository defines persistence operations for interview schedules.
type ScheduleRepository interface {
	List(ctx context.Context, filter ScheduleFilter) ([]models.InterviewSchedule, error)
	ListActiveByInterviewerAndDate(ctx context.Context, interviewerID uint, date string) ([]models.InterviewSchedule, error)
	ListByApplication(ctx context.Context, applicationID uint) ([]models.InterviewSchedule, error)
	GetByID(ctx context.Context, id uint) (models.InterviewSchedule, error)
	Create(ctx context.Context, schedule *models.InterviewSchedule) error
	CreateBatch(ctx context.Context, schedules []*models.InterviewSchedule) error
	Update(ctx context.Context, schedule *models.InterviewSchedule) error
	Replace(ctx context.Context, old *models.InterviewSchedule, replacement *models.InterviewSchedule) error
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository instantiates a GORM-backed schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) List(ctx context.Context, filter ScheduleFilter) ([]models.InterviewSchedule, error) {
	query := r.db.WithContext(ctx).Model(&models.InterviewSchedule{})

	if filter.InterviewerID != 0 {
		query = query.Where("interviewer_id = ?", filter.InterviewerID)
	}
	if filter.ApplicationID != 0 {
		query = query.Where("application_id = ?", filter.ApplicationID)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var schedules []models.InterviewSchedule
	if err := query.Order("date ASC, start_minutes ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *scheduleRepository) ListActiveByInterviewerAndDate(ctx context.Context, interviewerID uint, date string) ([]models.InterviewSchedule, error) {
	var schedules []models.InterviewSchedule
	err := r.db.WithContext(ctx).
		Where("interviewer_id = ? AND date = ? AND status <> ?", interviewerID, date, models.ScheduleStatusCancelled).
		Order("start_minutes ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *scheduleRepository) ListByApplication(ctx context.Context, applicationID uint) ([]models.InterviewSchedule, error) {
	var schedules []models.InterviewSchedule
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id uint) (models.InterviewSchedule, error) {
	var schedule models.InterviewSchedule
	if err := r.db.WithContext(ctx).First(&schedule, id).Error; err != nil {
		return models.InterviewSchedule{}, err
	}

	return schedule, nil
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *models.InterviewSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// CreateBatch persists the whole batch in one transaction; either every
// schedule is committed or none is.
func (r *scheduleRepository) CreateBatch(ctx context.Context, schedules []*models.InterviewSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, schedule := range schedules {
			if err := tx.Create(schedule).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *models.InterviewSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// Replace cancels the old schedule and creates its replacement atomically.
func (r *scheduleRepository) Replace(ctx context.Context, old *models.InterviewSchedule, replacement *models.InterviewSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(old).Error; err != nil {
			return err
		}
		return tx.Create(replacement).Error
	})
}
