package dto

import (
	"time"

	"github.com/twistedwarden/esmv2-sub001/internal/models"
)

// EvaluationCreateRequest records the interviewer's assessment of a completed
// interview. Result is the caller's own mapping of the recommendation onto
// the schedule outcome; it is never derived automatically.
type EvaluationCreateRequest struct {
	ScheduleID                 uint   `json:"schedule_id" validate:"required"`
	AcademicMotivationScore    int    `json:"academic_motivation_score" validate:"required"`
	LeadershipInvolvementScore int    `json:"leadership_involvement_score" validate:"required"`
	FinancialNeedScore         int    `json:"financial_need_score" validate:"required"`
	CharacterValuesScore       int    `json:"character_values_score" validate:"required"`
	OverallRecommendation      string `json:"overall_recommendation" validate:"required"`
	Result                     string `json:"result" validate:"required,oneof=passed failed needs_followup"`
	Remarks                    string `json:"remarks"`
	Strengths                  string `json:"strengths"`
	AreasForImprovement        string `json:"areas_for_improvement"`
}

// EvaluationResponse is the serialized representation returned to API clients.
type EvaluationResponse struct {
	ID                         uint      `json:"id"`
	ScheduleID                 uint      `json:"schedule_id"`
	AcademicMotivationScore    int       `json:"academic_motivation_score"`
	LeadershipInvolvementScore int       `json:"leadership_involvement_score"`
	FinancialNeedScore         int       `json:"financial_need_score"`
	CharacterValuesScore       int       `json:"character_values_score"`
	OverallRecommendation      string    `json:"overall_recommendation"`
	Remarks                    string    `json:"remarks,omitempty"`
	Strengths                  string    `json:"strengths,omitempty"`
	AreasForImprovement        string    `json:"areas_for_improvement,omitempty"`
	CreatedAt                  time.Time `json:"created_at"`
}

// NewEvaluationResponse converts a model into a DTO.
func NewEvaluationResponse(model models.InterviewEvaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:                         model.ID,
		ScheduleID:                 model.ScheduleID,
		AcademicMotivationScore:    model.AcademicMotivationScore,
		LeadershipInvolvementScore: model.LeadershipInvolvementScore,
		FinancialNeedScore:         model.FinancialNeedScore,
		CharacterValuesScore:       model.CharacterValuesScore,
		OverallRecommendation:      model.OverallRecommendation,
		Remarks:                    model.Remarks,
		Strengths:                  model.Strengths,
		AreasForImprovement:        model.AreasForImprovement,
		CreatedAt:                  model.CreatedAt,
	}
}
