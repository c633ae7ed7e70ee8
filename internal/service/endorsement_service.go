package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/internal/observability"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
)

// Classify derives the presentation-level endorsement state from the
// application status and the evaluation, if one exists. Rejection overrides
// everything, then endorsed, then the evaluation recommendation.
func Classify(application directory.Application, evaluation *models.InterviewEvaluation) models.EndorsementState {
	switch application.Status {
	case directory.ApplicationStatusRejected:
		return models.EndorsementStateRejected
	case directory.ApplicationStatusEndorsedToSSC:
		return models.EndorsementStateEndorsed
	}

	if evaluation == nil {
		return models.EndorsementStatePending
	}

	switch evaluation.OverallRecommendation {
	case models.RecommendationNeedsFollowup:
		return models.EndorsementStateConditional
	case models.RecommendationRecommended:
		return models.EndorsementStateReady
	}

	return models.EndorsementStatePending
}

// EndorsementService classifies applications for committee endorsement and
// applies individual and bulk endorsement decisions.
type EndorsementService interface {
	Review(ctx context.Context) ([]dto.EndorsementReviewItem, error)
	Classify(ctx context.Context, applicationID uint) (dto.EndorsementReviewItem, error)
	BulkEndorse(ctx context.Context, payload dto.BulkEndorseRequest, actor Actor) (dto.BulkEndorseResult, error)
	Endorse(ctx context.Context, applicationID uint, payload dto.EndorseRequest, actor Actor) error
	Reject(ctx context.Context, applicationID uint, payload dto.RejectRequest, actor Actor) error
}

type endorsementService struct {
	applications directory.ApplicationDirectory
	schedules    repository.ScheduleRepository
	evaluations  repository.EvaluationRepository
	activity     ActivityRecorder
	outcomes     OutcomePublisher
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	tracer       trace.Tracer
	logger       zerolog.Logger
}

// NewEndorsementService builds the endorsement decision service.
func NewEndorsementService(
	applications directory.ApplicationDirectory,
	schedules repository.ScheduleRepository,
	evaluations repository.EvaluationRepository,
	activity ActivityRecorder,
	outcomes OutcomePublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) EndorsementService {
	return &endorsementService{
		applications: applications,
		schedules:    schedules,
		evaluations:  evaluations,
		activity:     activity,
		outcomes:     outcomes,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		tracer:       otel.Tracer("endorsement-service"),
		logger:       logger.With().Str("component", "endorsement_service").Logger(),
	}
}

// Review lists interview-completed applications joined with their evaluation
// outcome and derived classification.
func (s *endorsementService) Review(ctx context.Context) ([]dto.EndorsementReviewItem, error) {
	applications, err := s.applications.ListApplications(ctx, directory.ApplicationStatusInterviewCompleted)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EndorsementReviewItem, 0, len(applications))
	for _, application := range applications {
		item, err := s.reviewItem(ctx, application)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// Classify returns the review row for one application.
func (s *endorsementService) Classify(ctx context.Context, applicationID uint) (dto.EndorsementReviewItem, error) {
	application, err := s.applications.GetApplication(ctx, applicationID)
	if err != nil {
		return dto.EndorsementReviewItem{}, err
	}

	return s.reviewItem(ctx, application)
}

// BulkEndorse filters the selection to the requested cohort and endorses each
// qualifying application. Per-item upstream failures are collected, never
// silently dropped.
func (s *endorsementService) BulkEndorse(ctx context.Context, payload dto.BulkEndorseRequest, actor Actor) (dto.BulkEndorseResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkEndorseResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "endorsement.bulk",
		trace.WithAttributes(
			attribute.String("cohort", payload.Cohort),
			attribute.Int("selection_size", len(payload.ApplicationIDs)),
		))
	defer span.End()

	qualifying := make([]dto.EndorsementReviewItem, 0, len(payload.ApplicationIDs))
	for _, applicationID := range payload.ApplicationIDs {
		item, err := s.Classify(ctx, applicationID)
		if err != nil {
			return dto.BulkEndorseResult{}, fmt.Errorf("application %d: %w", applicationID, err)
		}
		if cohortMatches(payload.Cohort, item.State) {
			qualifying = append(qualifying, item)
		}
	}
	if len(qualifying) == 0 {
		return dto.BulkEndorseResult{}, ErrEmptyCohort
	}

	result := dto.BulkEndorseResult{TotalProcessed: len(qualifying)}
	for _, item := range qualifying {
		if err := s.applications.UpdateApplicationStatus(ctx, item.ApplicationID, directory.ApplicationStatusEndorsedToSSC); err != nil {
			s.logger.Warn().Err(err).Uint("application_id", item.ApplicationID).Msg("bulk endorsement item failed")
			result.Failures = append(result.Failures, dto.BulkEndorseFailure{
				ApplicationID: item.ApplicationID,
				Reason:        err.Error(),
			})
			continue
		}
		result.EndorsedCount++
	}

	observability.Endorsements().WithLabelValues("endorsed").Add(float64(result.EndorsedCount))
	s.recordActivity(ctx, actor, "endorsement.bulk", nil, map[string]interface{}{
		"cohort":          payload.Cohort,
		"selection_size":  len(payload.ApplicationIDs),
		"total_processed": result.TotalProcessed,
		"endorsed_count":  result.EndorsedCount,
		"failures":        len(result.Failures),
		"note":            s.sanitize(payload.Note),
	})
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:    dto.OutcomeBulkResult,
		Message: fmt.Sprintf("%d of %d applications endorsed to the selection committee", result.EndorsedCount, result.TotalProcessed),
		Details: map[string]interface{}{
			"cohort":          payload.Cohort,
			"endorsed_count":  result.EndorsedCount,
			"total_processed": result.TotalProcessed,
			"failures":        len(result.Failures),
		},
	})

	return result, nil
}

// Endorse forwards a single application to the selection committee. Endorsing
// an already-endorsed application is a no-op.
func (s *endorsementService) Endorse(ctx context.Context, applicationID uint, payload dto.EndorseRequest, actor Actor) error {
	application, err := s.applications.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if application.Status == directory.ApplicationStatusEndorsedToSSC {
		return nil
	}

	if err := s.applications.UpdateApplicationStatus(ctx, applicationID, directory.ApplicationStatusEndorsedToSSC); err != nil {
		return err
	}

	observability.Endorsements().WithLabelValues("endorsed").Inc()
	s.recordActivity(ctx, actor, "endorsement.endorse", &applicationID, map[string]interface{}{
		"note": s.sanitize(payload.Note),
	})

	return nil
}

// Reject marks an application rejected, overriding any prior classification.
// A non-empty reason is mandatory.
func (s *endorsementService) Reject(ctx context.Context, applicationID uint, payload dto.RejectRequest, actor Actor) error {
	if strings.TrimSpace(payload.Reason) == "" {
		return ErrEmptyReason
	}

	if err := s.applications.UpdateApplicationStatus(ctx, applicationID, directory.ApplicationStatusRejected); err != nil {
		return err
	}

	observability.Endorsements().WithLabelValues("rejected").Inc()
	s.recordActivity(ctx, actor, "endorsement.reject", &applicationID, map[string]interface{}{
		"reason": s.sanitize(payload.Reason),
	})

	return nil
}

func (s *endorsementService) reviewItem(ctx context.Context, application directory.Application) (dto.EndorsementReviewItem, error) {
	evaluation, scheduleID, err := s.latestEvaluation(ctx, application.ID)
	if err != nil {
		return dto.EndorsementReviewItem{}, err
	}

	item := dto.EndorsementReviewItem{
		ApplicationID:     application.ID,
		ApplicantName:     application.ApplicantName,
		ApplicationStatus: application.Status,
		State:             Classify(application, evaluation),
		ScheduleID:        scheduleID,
	}
	if evaluation != nil {
		item.Recommendation = evaluation.OverallRecommendation
		evaluatedAt := evaluation.CreatedAt
		item.EvaluatedAt = &evaluatedAt
	}

	return item, nil
}

// latestEvaluation walks the application's schedules newest-first and returns
// the evaluation attached to the most recent completed one, if any.
func (s *endorsementService) latestEvaluation(ctx context.Context, applicationID uint) (*models.InterviewEvaluation, uint, error) {
	schedules, err := s.schedules.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, 0, err
	}

	for _, schedule := range schedules {
		if schedule.Status != models.ScheduleStatusCompleted {
			continue
		}

		evaluation, err := s.evaluations.GetByScheduleID(ctx, schedule.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, 0, err
		}

		return &evaluation, schedule.ID, nil
	}

	return nil, 0, nil
}

func cohortMatches(cohort string, state models.EndorsementState) bool {
	switch cohort {
	case "ready":
		return state == models.EndorsementStateReady
	case "conditional":
		return state == models.EndorsementStateConditional
	case "all":
		return state != models.EndorsementStateEndorsed && state != models.EndorsementStateRejected
	}
	return false
}

func (s *endorsementService) recordActivity(ctx context.Context, actor Actor, action string, applicationID *uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	entry := ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: models.EntityTypeApplication,
		EntityID:   applicationID,
		Metadata:   metadata,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record endorsement activity")
	}
}

func (s *endorsementService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}
