package models

import "time"

// InterviewEvaluation is the scored and narrative assessment recorded once
// per completed interview. The overall recommendation is the interviewer's
// own judgment call; it is never computed from the four dimension scores.
type InterviewEvaluation struct {
	ID                         uint              `gorm:"primaryKey" json:"id"`
	ScheduleID                 uint              `gorm:"not null;uniqueIndex" json:"schedule_id"`
	AcademicMotivationScore    int               `gorm:"not null" json:"academic_motivation_score"`
	LeadershipInvolvementScore int               `gorm:"not null" json:"leadership_involvement_score"`
	FinancialNeedScore         int               `gorm:"not null" json:"financial_need_score"`
	CharacterValuesScore       int               `gorm:"not null" json:"character_values_score"`
	OverallRecommendation      string            `gorm:"size:32;not null" json:"overall_recommendation"`
	Remarks                    string            `gorm:"type:text" json:"remarks"`
	Strengths                  string            `gorm:"type:text" json:"strengths"`
	AreasForImprovement        string            `gorm:"type:text" json:"areas_for_improvement"`
	CreatedAt                  time.Time         `json:"created_at"`
	UpdatedAt                  time.Time         `json:"updated_at"`
	Schedule                   InterviewSchedule `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// RecommendationRecommended endorses the candidate without reservation.
	RecommendationRecommended = "recommended"
	// RecommendationNeedsFollowup defers the decision to committee discretion.
	RecommendationNeedsFollowup = "needs_followup"
	// RecommendationNotRecommended advises against endorsement.
	RecommendationNotRecommended = "not_recommended"
)

// ValidRecommendation reports whether the value is a known recommendation.
func ValidRecommendation(value string) bool {
	switch value {
	case RecommendationRecommended, RecommendationNeedsFollowup, RecommendationNotRecommended:
		return true
	}
	return false
}

// Scores returns the four dimension scores in a fixed order, which keeps
// range validation in one loop.
func (e InterviewEvaluation) Scores() [4]int {
	return [4]int{
		e.AcademicMotivationScore,
		e.LeadershipInvolvementScore,
		e.FinancialNeedScore,
		e.CharacterValuesScore,
	}
}
