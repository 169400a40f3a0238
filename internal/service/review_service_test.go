package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/repository"
)

func newReviewService(t *testing.T, db *gorm.DB) ReviewService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewReviewService(repository.NewTxManager(db), validate, NewBadgeService(testLogger()), nil, testLogger())
}

func intPtr(n int) *int { return &n }

func TestReviewServiceApproveCreditsLedger(t *testing.T) {
	db := newTestDB(t)
	seedBadges(t, db)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "trainer@example.org", models.RoleParticipant, false)
	submission := createPendingSubmission(t, db, user.ID, models.ActivityAmplify, map[string]interface{}{
		"peers_trained":    float64(3),
		"students_trained": float64(10),
	})

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	reviewed, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{
		Decision: DecisionApprove,
		Note:     "solid training evidence",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, reviewed.Status)
	require.Equal(t, reviewer.ID, *reviewed.ReviewerID)
	require.NotNil(t, reviewed.ReviewedAt)

	entries := ledgerEntriesFor(t, db, user.ID)
	require.Len(t, entries, 1)
	require.Equal(t, 16, entries[0].Delta)
	require.Equal(t, models.PointsSourceManual, entries[0].Source)
	require.Equal(t, models.ExternalSourceAdminApproval, *entries[0].ExternalSource)

	audits := auditEntriesFor(t, db, models.AuditActionApproveSubmission)
	require.Len(t, audits, 1)
	require.Equal(t, reviewer.ID, audits[0].ActorID)
}

func TestReviewServiceRejectHasNoLedgerEffect(t *testing.T) {
	db := newTestDB(t)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "explorer@example.org", models.RoleParticipant, false)
	submission := createPendingSubmission(t, db, user.ID, models.ActivityExplore, map[string]interface{}{"description": "tried a tool"})

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	reviewed, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{
		Decision: DecisionReject,
		Note:     "insufficient evidence",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, reviewed.Status)
	require.Empty(t, ledgerEntriesFor(t, db, user.ID))
	require.Len(t, auditEntriesFor(t, db, models.AuditActionRejectSubmission), 1)
}

func TestReviewServiceSecondDecisionFails(t *testing.T) {
	db := newTestDB(t)
	seedBadges(t, db)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "explorer@example.org", models.RoleParticipant, false)
	submission := createPendingSubmission(t, db, user.ID, models.ActivityExplore, map[string]interface{}{"description": "tried a tool"})

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	_, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{Decision: DecisionApprove})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{Decision: DecisionReject})
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	require.Equal(t, models.SubmissionStatusApproved, stateErr.Status)

	// The failed second decision must not have flipped the status or added
	// ledger rows.
	require.Len(t, ledgerEntriesFor(t, db, user.ID), 1)
	var current models.Submission
	require.NoError(t, db.First(&current, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusApproved, current.Status)
}

func TestReviewServiceOverrideWithinBand(t *testing.T) {
	db := newTestDB(t)
	seedBadges(t, db)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "trainer@example.org", models.RoleParticipant, false)
	// Base points: 2*40 + 1*20 = 100, so the permitted band is [80, 120].
	submission := createPendingSubmission(t, db, user.ID, models.ActivityAmplify, map[string]interface{}{
		"peers_trained":    float64(40),
		"students_trained": float64(20),
	})

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	_, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{
		Decision:      DecisionApprove,
		Note:          "exceptional reach",
		PointOverride: intPtr(120),
	})
	require.NoError(t, err)

	entries := ledgerEntriesFor(t, db, user.ID)
	require.Len(t, entries, 1)
	require.Equal(t, 120, entries[0].Delta)

	adjustments := auditEntriesFor(t, db, models.AuditActionAdjustPoints)
	require.Len(t, adjustments, 1)

	// Lower edge of the band is accepted too.
	other := createTestUser(t, db, "trainer2@example.org", models.RoleParticipant, false)
	lowSubmission := createPendingSubmission(t, db, other.ID, models.ActivityAmplify, map[string]interface{}{
		"peers_trained":    float64(40),
		"students_trained": float64(20),
	})
	_, err = svc.Review(context.Background(), lowSubmission.ID, actor, dto.ReviewRequest{
		Decision:      DecisionApprove,
		Note:          "evidence partially verified",
		PointOverride: intPtr(80),
	})
	require.NoError(t, err)

	entries = ledgerEntriesFor(t, db, other.ID)
	require.Len(t, entries, 1)
	require.Equal(t, 80, entries[0].Delta)
}

func TestReviewServiceOverrideOutsideBand(t *testing.T) {
	for _, override := range []int{121, 79} {
		db := newTestDB(t)
		reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
		user := createTestUser(t, db, "trainer@example.org", models.RoleParticipant, false)
		submission := createPendingSubmission(t, db, user.ID, models.ActivityAmplify, map[string]interface{}{
			"peers_trained":    float64(40),
			"students_trained": float64(20),
		})

		svc := newReviewService(t, db)
		actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

		_, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{
			Decision:      DecisionApprove,
			PointOverride: intPtr(override),
		})

		var adjustErr *PointAdjustmentError
		require.ErrorAs(t, err, &adjustErr)
		require.Equal(t, 100, adjustErr.BasePoints)
		require.Equal(t, 20, adjustErr.MaxAdjustment)

		// Rolled back: still pending, no credit.
		var current models.Submission
		require.NoError(t, db.First(&current, submission.ID).Error)
		require.Equal(t, models.SubmissionStatusPending, current.Status)
		require.Empty(t, ledgerEntriesFor(t, db, user.ID))
	}
}

func TestReviewServiceLearnApprovalDoesNotCredit(t *testing.T) {
	db := newTestDB(t)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "learner@example.org", models.RoleParticipant, false)
	submission := createPendingSubmission(t, db, user.ID, models.ActivityLearn, map[string]interface{}{"course_name": "Foundations"})

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	reviewed, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{Decision: DecisionApprove})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, reviewed.Status)

	// Learn points arrive through the LMS webhook, not manual approval.
	require.Empty(t, ledgerEntriesFor(t, db, user.ID))
	audits := auditEntriesFor(t, db, models.AuditActionApproveSubmission)
	require.Len(t, audits, 1)
	require.Equal(t, false, audits[0].Metadata["credited"])
}

func TestReviewServiceMissingSubmission(t *testing.T) {
	db := newTestDB(t)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	_, err := svc.Review(context.Background(), 404, actor, dto.ReviewRequest{Decision: DecisionApprove})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestReviewServiceBulkReviewSkipsMissingAndTerminal(t *testing.T) {
	db := newTestDB(t)
	seedBadges(t, db)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "explorer@example.org", models.RoleParticipant, false)

	first := createPendingSubmission(t, db, user.ID, models.ActivityExplore, map[string]interface{}{"description": "a"})
	second := createPendingSubmission(t, db, user.ID, models.ActivityPresent, map[string]interface{}{"title": "talk"})
	rejected := createPendingSubmission(t, db, user.ID, models.ActivityShine, map[string]interface{}{"summary": "s"})
	require.NoError(t, db.Model(&rejected).Update("status", models.SubmissionStatusRejected).Error)

	svc := newReviewService(t, db)
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	result, err := svc.BulkReview(context.Background(), actor, dto.BulkReviewRequest{
		SubmissionIDs: []uint{first.ID, second.ID, rejected.ID, 9999},
		Decision:      DecisionApprove,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.ProcessedCount)

	entries := ledgerEntriesFor(t, db, user.ID)
	require.Len(t, entries, 2)
	require.Equal(t, 50, entries[0].Delta+entries[1].Delta)
}

// failCreateLedger forces ledger inserts to fail so the surrounding
// transaction's rollback behavior can be observed.
type failCreateLedger struct {
	repository.LedgerRepository
}

func (failCreateLedger) Create(ctx context.Context, entry *models.PointsLedgerEntry) error {
	return errors.New("ledger insert failed")
}

type ledgerFailTx struct {
	inner repository.TxManager
}

func (m ledgerFailTx) InTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	return m.inner.InTx(ctx, func(r *repository.Repositories) error {
		r.Ledger = failCreateLedger{LedgerRepository: r.Ledger}
		return fn(r)
	})
}

func TestReviewServiceApproveRollsBackWhenLedgerFails(t *testing.T) {
	db := newTestDB(t)
	reviewer := createTestUser(t, db, "reviewer@example.org", models.RoleReviewer, false)
	user := createTestUser(t, db, "explorer@example.org", models.RoleParticipant, false)
	submission := createPendingSubmission(t, db, user.ID, models.ActivityExplore, map[string]interface{}{"description": "a"})

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(ledgerFailTx{inner: repository.NewTxManager(db)}, validate, NewBadgeService(testLogger()), nil, testLogger())
	actor := ReviewActor{ID: reviewer.ID, Role: string(reviewer.Role)}

	_, err := svc.Review(context.Background(), submission.ID, actor, dto.ReviewRequest{Decision: DecisionApprove})
	require.Error(t, err)

	// The status flip committed earlier inside the transaction must have
	// rolled back with the failed credit.
	var current models.Submission
	require.NoError(t, db.First(&current, submission.ID).Error)
	require.Equal(t, models.SubmissionStatusPending, current.Status)
	require.Empty(t, ledgerEntriesFor(t, db, user.ID))
	require.Empty(t, auditEntriesFor(t, db, models.AuditActionApproveSubmission))
}
