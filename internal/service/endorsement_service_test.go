package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
)

func TestClassifyPrecedence(t *testing.T) {
	recommended := &models.InterviewEvaluation{OverallRecommendation: models.RecommendationRecommended}
	followup := &models.InterviewEvaluation{OverallRecommendation: models.RecommendationNeedsFollowup}
	notRecommended := &models.InterviewEvaluation{OverallRecommendation: models.RecommendationNotRecommended}

	// Endorsed wins regardless of evaluation content.
	endorsed := directory.Application{Status: directory.ApplicationStatusEndorsedToSSC}
	require.Equal(t, models.EndorsementStateEndorsed, Classify(endorsed, recommended))
	require.Equal(t, models.EndorsementStateEndorsed, Classify(endorsed, followup))
	require.Equal(t, models.EndorsementStateEndorsed, Classify(endorsed, nil))

	// Rejection overrides everything, endorsement included.
	rejected := directory.Application{Status: directory.ApplicationStatusRejected}
	require.Equal(t, models.EndorsementStateRejected, Classify(rejected, recommended))

	completed := directory.Application{Status: directory.ApplicationStatusInterviewCompleted}
	require.Equal(t, models.EndorsementStateReady, Classify(completed, recommended))
	require.Equal(t, models.EndorsementStateConditional, Classify(completed, followup))
	require.Equal(t, models.EndorsementStatePending, Classify(completed, notRecommended))
	require.Equal(t, models.EndorsementStatePending, Classify(completed, nil))
}

type endorsementFixture struct {
	*evaluationFixture
	svc EndorsementService
}

func newEndorsementFixture(t *testing.T, applications ...directory.Application) *endorsementFixture {
	t.Helper()

	evaluations := newEvaluationFixture(t, applications...)
	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := NewActivityService(evaluations.activity, testLogger())

	return &endorsementFixture{
		evaluationFixture: evaluations,
		svc: NewEndorsementService(
			evaluations.dir,
			evaluations.repo,
			evaluations.evaluations,
			activity,
			evaluations.outcomes,
			validate,
			testLogger(),
		),
	}
}

// evaluate books, completes, and scores one application's interview.
func (f *endorsementFixture) evaluate(t *testing.T, applicationID uint, recommendation string) {
	t.Helper()

	booked := f.bookSchedule(t, applicationID)
	payload := evaluationPayload(booked.ID)
	payload.OverallRecommendation = recommendation
	if recommendation == models.RecommendationRecommended {
		payload.Result = models.ResultPassed
	}
	_, err := f.evaluationFixture.svc.Record(context.Background(), payload, testActor)
	require.NoError(t, err)
}

func TestBulkEndorseReadyCohort(t *testing.T) {
	f := newEndorsementFixture(t,
		eligibleApplication(1, "Ana Santos"),
		eligibleApplication(2, "Ben Cruz"),
		eligibleApplication(3, "Cara Lim"),
	)
	f.evaluate(t, 1, models.RecommendationRecommended)
	f.evaluate(t, 2, models.RecommendationNeedsFollowup)
	f.evaluate(t, 3, models.RecommendationRecommended)

	result, err := f.svc.BulkEndorse(context.Background(), dto.BulkEndorseRequest{
		ApplicationIDs: []uint{1, 2, 3},
		Cohort:         "ready",
	}, testActor)
	require.NoError(t, err)
	require.Equal(t, 2, result.EndorsedCount)
	require.Equal(t, 2, result.TotalProcessed)
	require.Empty(t, result.Failures)

	for _, tc := range []struct {
		id     uint
		status string
	}{
		{1, directory.ApplicationStatusEndorsedToSSC},
		{2, directory.ApplicationStatusInterviewCompleted},
		{3, directory.ApplicationStatusEndorsedToSSC},
	} {
		application, err := f.dir.GetApplication(context.Background(), tc.id)
		require.NoError(t, err)
		require.Equal(t, tc.status, application.Status)
	}
}

func TestBulkEndorseEmptyCohort(t *testing.T) {
	f := newEndorsementFixture(t, eligibleApplication(1, "Ana Santos"))
	f.evaluate(t, 1, models.RecommendationNeedsFollowup)

	_, err := f.svc.BulkEndorse(context.Background(), dto.BulkEndorseRequest{
		ApplicationIDs: []uint{1},
		Cohort:         "ready",
	}, testActor)
	require.ErrorIs(t, err, ErrEmptyCohort)
}

func TestBulkEndorseAllExcludesDecidedApplications(t *testing.T) {
	f := newEndorsementFixture(t,
		eligibleApplication(1, "Ana Santos"),
		eligibleApplication(2, "Ben Cruz"),
		directory.Application{ID: 3, ApplicantName: "Cara Lim", Status: directory.ApplicationStatusEndorsedToSSC},
		directory.Application{ID: 4, ApplicantName: "Dan Uy", Status: directory.ApplicationStatusRejected},
	)
	f.evaluate(t, 1, models.RecommendationRecommended)
	f.evaluate(t, 2, models.RecommendationNeedsFollowup)

	result, err := f.svc.BulkEndorse(context.Background(), dto.BulkEndorseRequest{
		ApplicationIDs: []uint{1, 2, 3, 4},
		Cohort:         "all",
	}, testActor)
	require.NoError(t, err)
	require.Equal(t, 2, result.TotalProcessed)
	require.Equal(t, 2, result.EndorsedCount)
}

func TestBulkEndorseCollectsPerItemFailures(t *testing.T) {
	f := newEndorsementFixture(t,
		eligibleApplication(1, "Ana Santos"),
		eligibleApplication(2, "Ben Cruz"),
	)
	f.evaluate(t, 1, models.RecommendationRecommended)
	f.evaluate(t, 2, models.RecommendationRecommended)
	f.dir.updateErrs[2] = directory.ErrUpstreamFailure

	result, err := f.svc.BulkEndorse(context.Background(), dto.BulkEndorseRequest{
		ApplicationIDs: []uint{1, 2},
		Cohort:         "ready",
	}, testActor)
	require.NoError(t, err)
	require.Equal(t, 1, result.EndorsedCount)
	require.Equal(t, 2, result.TotalProcessed)
	require.Len(t, result.Failures, 1)
	require.Equal(t, uint(2), result.Failures[0].ApplicationID)
}

func TestEndorseIsIdempotentForEndorsedApplications(t *testing.T) {
	f := newEndorsementFixture(t,
		directory.Application{ID: 1, ApplicantName: "Ana", Status: directory.ApplicationStatusEndorsedToSSC},
	)

	require.NoError(t, f.svc.Endorse(context.Background(), 1, dto.EndorseRequest{}, testActor))
	require.Empty(t, f.dir.statusUpdates)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newEndorsementFixture(t, eligibleApplication(1, "Ana Santos"))

	err := f.svc.Reject(context.Background(), 1, dto.RejectRequest{Reason: "   "}, testActor)
	require.ErrorIs(t, err, ErrEmptyReason)

	require.NoError(t, f.svc.Reject(context.Background(), 1, dto.RejectRequest{Reason: "incomplete records"}, testActor))

	item, err := f.svc.Classify(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.EndorsementStateRejected, item.State)
}

func TestReviewJoinsEvaluations(t *testing.T) {
	f := newEndorsementFixture(t,
		eligibleApplication(1, "Ana Santos"),
		eligibleApplication(2, "Ben Cruz"),
	)
	f.evaluate(t, 1, models.RecommendationRecommended)
	f.evaluate(t, 2, models.RecommendationNeedsFollowup)

	items, err := f.svc.Review(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[uint]dto.EndorsementReviewItem, len(items))
	for _, item := range items {
		byID[item.ApplicationID] = item
	}
	require.Equal(t, models.EndorsementStateReady, byID[1].State)
	require.Equal(t, models.RecommendationRecommended, byID[1].Recommendation)
	require.NotNil(t, byID[1].EvaluatedAt)
	require.Equal(t, models.EndorsementStateConditional, byID[2].State)
}
