package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uint]models.InterviewSchedule
	nextID    uint
}

func newMemoryScheduleRepo() *memoryScheduleRepo {
	return &memoryScheduleRepo{schedules: make(map[uint]models.InterviewSchedule), nextID: 1}
}

func (m *memoryScheduleRepo) List(ctx context.Context, filter repository.ScheduleFilter) ([]models.InterviewSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.InterviewSchedule
	for _, schedule := range m.schedules {
		if filter.InterviewerID != 0 && schedule.InterviewerID != filter.InterviewerID {
			continue
		}
		if filter.ApplicationID != 0 && schedule.ApplicationID != filter.ApplicationID {
			continue
		}
		if filter.Date != "" && schedule.Date != filter.Date {
			continue
		}
		if filter.Status != "" && schedule.Status != filter.Status {
			continue
		}
		out = append(out, schedule)
	}
	return out, nil
}

func (m *memoryScheduleRepo) ListActiveByInterviewerAndDate(ctx context.Context, interviewerID uint, date string) ([]models.InterviewSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.InterviewSchedule
	for _, schedule := range m.schedules {
		if schedule.InterviewerID != interviewerID || schedule.Date != date {
			continue
		}
		if schedule.Status == models.ScheduleStatusCancelled {
			continue
		}
		out = append(out, schedule)
	}
	return out, nil
}

func (m *memoryScheduleRepo) ListByApplication(ctx context.Context, applicationID uint) ([]models.InterviewSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.InterviewSchedule
	for id := m.nextID; id > 0; id-- {
		schedule, ok := m.schedules[id]
		if !ok || schedule.ApplicationID != applicationID {
			continue
		}
		out = append(out, schedule)
	}
	return out, nil
}

func (m *memoryScheduleRepo) GetByID(ctx context.Context, id uint) (models.InterviewSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, ok := m.schedules[id]
	if !ok {
		return models.InterviewSchedule{}, gorm.ErrRecordNotFound
	}
	return schedule, nil
}

func (m *memoryScheduleRepo) Create(ctx context.Context, schedule *models.InterviewSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedule.ID = m.nextID
	m.nextID++
	schedule.CreatedAt = time.Now()
	m.schedules[schedule.ID] = *schedule
	return nil
}

func (m *memoryScheduleRepo) CreateBatch(ctx context.Context, schedules []*models.InterviewSchedule) error {
	for _, schedule := range schedules {
		if err := m.Create(ctx, schedule); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryScheduleRepo) Update(ctx context.Context, schedule *models.InterviewSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[schedule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.schedules[schedule.ID] = *schedule
	return nil
}

func (m *memoryScheduleRepo) Replace(ctx context.Context, old *models.InterviewSchedule, replacement *models.InterviewSchedule) error {
	if err := m.Update(ctx, old); err != nil {
		return err
	}
	return m.Create(ctx, replacement)
}

type memoryEvaluationRepo struct {
	mu          sync.Mutex
	evaluations map[uint]models.InterviewEvaluation
	nextID      uint
}

func newMemoryEvaluationRepo() *memoryEvaluationRepo {
	return &memoryEvaluationRepo{evaluations: make(map[uint]models.InterviewEvaluation), nextID: 1}
}

func (m *memoryEvaluationRepo) GetByScheduleID(ctx context.Context, scheduleID uint) (models.InterviewEvaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, evaluation := range m.evaluations {
		if evaluation.ScheduleID == scheduleID {
			return evaluation, nil
		}
	}
	return models.InterviewEvaluation{}, gorm.ErrRecordNotFound
}

func (m *memoryEvaluationRepo) ExistsForSchedule(ctx context.Context, scheduleID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, evaluation := range m.evaluations {
		if evaluation.ScheduleID == scheduleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryEvaluationRepo) Create(ctx context.Context, evaluation *models.InterviewEvaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	evaluation.ID = m.nextID
	m.nextID++
	evaluation.CreatedAt = time.Now()
	m.evaluations[evaluation.ID] = *evaluation
	return nil
}

type memoryActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

// stubDirectory is a scripted application directory. Status updates mutate
// the in-memory applications so classification tests see transitions.
type stubDirectory struct {
	mu            sync.Mutex
	applications  map[uint]directory.Application
	updateErrs    map[uint]error
	statusUpdates []statusUpdate
}

type statusUpdate struct {
	ApplicationID uint
	Status        string
}

func newStubDirectory(applications ...directory.Application) *stubDirectory {
	byID := make(map[uint]directory.Application, len(applications))
	for _, application := range applications {
		byID[application.ID] = application
	}
	return &stubDirectory{applications: byID, updateErrs: make(map[uint]error)}
}

func (d *stubDirectory) ListApplications(ctx context.Context, status string) ([]directory.Application, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []directory.Application
	for _, application := range d.applications {
		if status == "" || application.Status == status {
			out = append(out, application)
		}
	}
	return out, nil
}

func (d *stubDirectory) GetApplication(ctx context.Context, id uint) (directory.Application, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	application, ok := d.applications[id]
	if !ok {
		return directory.Application{}, fmt.Errorf("%w: id %d", directory.ErrApplicationNotFound, id)
	}
	return application, nil
}

func (d *stubDirectory) UpdateApplicationStatus(ctx context.Context, id uint, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err, ok := d.updateErrs[id]; ok {
		return err
	}

	application, ok := d.applications[id]
	if !ok {
		return fmt.Errorf("%w: id %d", directory.ErrApplicationNotFound, id)
	}
	application.Status = status
	d.applications[id] = application
	d.statusUpdates = append(d.statusUpdates, statusUpdate{ApplicationID: id, Status: status})
	return nil
}

// captureOutcomes records published events for assertions.
type captureOutcomes struct {
	mu     sync.Mutex
	events []dto.OutcomeEvent
}

func (c *captureOutcomes) Publish(ctx context.Context, event dto.OutcomeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureOutcomes) byType(eventType string) []dto.OutcomeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []dto.OutcomeEvent
	for _, event := range c.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
