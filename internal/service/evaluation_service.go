package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
)

// EvaluationService records and serves interview evaluations. An evaluation
// is written exactly once per schedule and completing the schedule with the
// caller-chosen result is part of the same operation.
type EvaluationService interface {
	Record(ctx context.Context, payload dto.EvaluationCreateRequest, actor Actor) (dto.EvaluationResponse, error)
	GetBySchedule(ctx context.Context, scheduleID uint) (dto.EvaluationResponse, error)
}

type evaluationService struct {
	evaluations repository.EvaluationRepository
	schedules   ScheduleService
	activity    ActivityRecorder
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewEvaluationService builds the evaluation recorder.
func NewEvaluationService(
	evaluations repository.EvaluationRepository,
	schedules ScheduleService,
	activity ActivityRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		evaluations: evaluations,
		schedules:   schedules,
		activity:    activity,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
	}
}

// Record validates the evaluation, completes the schedule with the result
// the caller supplied and persists the evaluation. The recommendation never
// decides the interview result on its own. A completed schedule whose
// evaluation failed to land on an earlier attempt accepts a retry.
func (s *evaluationService) Record(ctx context.Context, payload dto.EvaluationCreateRequest, actor Actor) (dto.EvaluationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EvaluationResponse{}, err
	}

	evaluation := models.InterviewEvaluation{
		ScheduleID:                 payload.ScheduleID,
		AcademicMotivationScore:    payload.AcademicMotivationScore,
		LeadershipInvolvementScore: payload.LeadershipInvolvementScore,
		FinancialNeedScore:         payload.FinancialNeedScore,
		CharacterValuesScore:       payload.CharacterValuesScore,
		OverallRecommendation:      payload.OverallRecommendation,
		Remarks:                    s.sanitize(payload.Remarks),
		Strengths:                  s.sanitize(payload.Strengths),
		AreasForImprovement:        s.sanitize(payload.AreasForImprovement),
	}

	for _, score := range evaluation.Scores() {
		if score < 1 || score > 5 {
			return dto.EvaluationResponse{}, fmt.Errorf("%w: %d is not between 1 and 5", ErrScoreOutOfRange, score)
		}
	}
	if !models.ValidRecommendation(evaluation.OverallRecommendation) {
		return dto.EvaluationResponse{}, fmt.Errorf("%w: %q", ErrInvalidRecommendation, evaluation.OverallRecommendation)
	}

	exists, err := s.evaluations.ExistsForSchedule(ctx, payload.ScheduleID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	if exists {
		return dto.EvaluationResponse{}, ErrEvaluationExists
	}

	schedule, err := s.schedules.Get(ctx, payload.ScheduleID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	switch schedule.Status {
	case models.ScheduleStatusScheduled:
		if _, err := s.schedules.Complete(ctx, payload.ScheduleID, payload.Result, "", actor); err != nil {
			return dto.EvaluationResponse{}, err
		}
	case models.ScheduleStatusCompleted:
		// A prior attempt completed the schedule but failed before the
		// evaluation row landed. Attach it now; the stored result stands.
	default:
		return dto.EvaluationResponse{}, fmt.Errorf("%w: cannot evaluate a %s schedule", ErrInvalidTransition, schedule.Status)
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		return dto.EvaluationResponse{}, err
	}

	if s.activity != nil {
		entry := ActivityEntry{
			Actor:      actor,
			Action:     "evaluation.record",
			EntityType: models.EntityTypeEvaluation,
			EntityID:   &evaluation.ID,
			Metadata: map[string]interface{}{
				"schedule_id":    payload.ScheduleID,
				"recommendation": evaluation.OverallRecommendation,
				"result":         payload.Result,
			},
		}
		if err := s.activity.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Uint("schedule_id", payload.ScheduleID).Msg("failed to record evaluation activity")
		}
	}

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) GetBySchedule(ctx context.Context, scheduleID uint) (dto.EvaluationResponse, error) {
	evaluation, err := s.evaluations.GetByScheduleID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrEvaluationNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}
