package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/observability"
	"github.com/leaps-program/leaps-api/internal/repository"
)

// Review decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ReviewActor identifies the reviewer performing a decision.
type ReviewActor struct {
	ID   uint
	Role string
}

// ReviewService is the transactional unit that, given a reviewer decision,
// mutates submission, ledger and audit trail atomically. A reviewer action
// can never leave a submission approved with no matching ledger entry, or
// vice versa: every approval sub-step commits or rolls back as one unit.
type ReviewService interface {
	Review(ctx context.Context, submissionID uint, actor ReviewActor, req dto.ReviewRequest) (dto.SubmissionResponse, error)
	BulkReview(ctx context.Context, actor ReviewActor, req dto.BulkReviewRequest) (dto.BulkReviewResponse, error)
}

type reviewService struct {
	tx        repository.TxManager
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	badges    BadgeEvaluator
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReviewService constructs the review orchestrator.
func NewReviewService(tx repository.TxManager, validate *validator.Validate, badges BadgeEvaluator, publisher EventPublisher, logger zerolog.Logger) ReviewService {
	return &reviewService{
		tx:        tx,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		badges:    badges,
		publisher: publisher,
		logger:    logger.With().Str("component", "review_service").Logger(),
		now:       time.Now,
	}
}

func (s *reviewService) Review(ctx context.Context, submissionID uint, actor ReviewActor, req dto.ReviewRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/leaps-program/leaps-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.decide")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
		attribute.String("review.decision", req.Decision),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	var (
		reviewed models.Submission
		credited *models.PointsLedgerEntry
	)

	err := s.tx.InTx(ctx, func(r *repository.Repositories) error {
		submission, err := r.Submissions.GetByID(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		entry, err := s.applyDecision(ctx, r, &submission, actor, req.Decision, req.Note, req.PointOverride)
		if err != nil {
			return err
		}

		reviewed = submission
		credited = entry
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.Reviews().WithLabelValues(req.Decision).Inc()
	s.publishCredit(ctx, credited)
	span.SetAttributes(attribute.String("review.status", reviewed.Status))

	return dto.NewSubmissionResponse(reviewed), nil
}

func (s *reviewService) BulkReview(ctx context.Context, actor ReviewActor, req dto.BulkReviewRequest) (dto.BulkReviewResponse, error) {
	tracer := otel.Tracer("github.com/leaps-program/leaps-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.bulk")
	span.SetAttributes(
		attribute.Int("review.batch_size", len(req.SubmissionIDs)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BulkReviewResponse{}, err
	}

	var (
		processed int
		entries   []*models.PointsLedgerEntry
	)

	// One outer transaction; each submission reviewed independently inside
	// it. A submission that is missing or no longer pending is skipped, not
	// treated as a batch failure.
	err := s.tx.InTx(ctx, func(r *repository.Repositories) error {
		for _, id := range req.SubmissionIDs {
			submission, err := r.Submissions.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			if submission.Status != models.SubmissionStatusPending {
				continue
			}

			entry, err := s.applyDecision(ctx, r, &submission, actor, req.Decision, req.Note, nil)
			if err != nil {
				return err
			}

			processed++
			if entry != nil {
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk_review_failed")
		return dto.BulkReviewResponse{}, err
	}

	observability.Reviews().WithLabelValues(req.Decision).Add(float64(processed))
	for _, entry := range entries {
		s.publishCredit(ctx, entry)
	}
	span.SetAttributes(attribute.Int("review.processed", processed))

	return dto.BulkReviewResponse{ProcessedCount: processed}, nil
}

// applyDecision performs one reviewer decision against a loaded submission
// using transaction-bound repositories. It returns the ledger entry created
// by an approval, or nil when the decision produced no credit.
func (s *reviewService) applyDecision(
	ctx context.Context,
	r *repository.Repositories,
	submission *models.Submission,
	actor ReviewActor,
	decision, note string,
	pointOverride *int,
) (*models.PointsLedgerEntry, error) {
	if submission.Status != models.SubmissionStatusPending {
		return nil, &InvalidStateError{Status: submission.Status}
	}

	note = strings.TrimSpace(s.sanitizer.Sanitize(note))
	reviewedAt := s.now()
	reviewerID := actor.ID
	submission.ReviewerID = &reviewerID
	submission.ReviewNote = note
	submission.ReviewedAt = &reviewedAt

	if decision == DecisionReject {
		submission.Status = models.SubmissionStatusRejected
		if err := r.Submissions.Update(ctx, submission); err != nil {
			return nil, err
		}
		if err := s.writeAudit(ctx, r, actor, models.AuditActionRejectSubmission, submission.ID, map[string]interface{}{
			"activity": string(submission.ActivityCode),
			"note":     note,
		}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	def, ok := models.ActivityByCode(submission.ActivityCode)
	if !ok {
		return nil, ErrActivityNotFound
	}

	submission.Status = models.SubmissionStatusApproved
	if err := r.Submissions.Update(ctx, submission); err != nil {
		return nil, err
	}

	// Webhook-credited stages: approval acknowledges evidence, the points
	// arrive through the event ingestor. No ledger effect here.
	if !def.CreditsOnApproval {
		return nil, s.writeAudit(ctx, r, actor, models.AuditActionApproveSubmission, submission.ID, map[string]interface{}{
			"activity": string(submission.ActivityCode),
			"credited": false,
			"note":     note,
		})
	}

	basePoints := ComputePoints(submission.ActivityCode, submission.Payload)
	finalPoints := basePoints
	if pointOverride != nil {
		maxAdjustment := MaxAdjustment(basePoints)
		delta := *pointOverride - basePoints
		if delta < -maxAdjustment || delta > maxAdjustment {
			return nil, &PointAdjustmentError{
				BasePoints:    basePoints,
				Override:      *pointOverride,
				MaxAdjustment: maxAdjustment,
			}
		}
		finalPoints = *pointOverride
	}

	externalSource := models.ExternalSourceAdminApproval
	externalEventID := fmt.Sprintf("submission_%d", submission.ID)
	entry := &models.PointsLedgerEntry{
		UserID:          submission.UserID,
		ActivityCode:    submission.ActivityCode,
		Delta:           finalPoints,
		Source:          models.PointsSourceManual,
		ExternalSource:  &externalSource,
		ExternalEventID: &externalEventID,
		OccurredAt:      reviewedAt,
		Metadata: datatypes.JSONMap{
			"submission_id": submission.ID,
			"reviewer_id":   actor.ID,
		},
	}

	if err := r.Ledger.Create(ctx, entry); err != nil {
		// The idempotency key already produced a credit for this submission
		// on an earlier attempt; the retry must not credit twice.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn().
				Uint("submission_id", submission.ID).
				Msg("ledger credit already present for submission, skipping insert")
			entry = nil
		} else {
			return nil, err
		}
	}

	if entry != nil {
		if err := s.badges.GrantBadgesForUser(ctx, r, submission.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.writeAudit(ctx, r, actor, models.AuditActionApproveSubmission, submission.ID, map[string]interface{}{
		"activity": string(submission.ActivityCode),
		"credited": entry != nil,
		"points":   finalPoints,
		"note":     note,
	}); err != nil {
		return nil, err
	}

	if pointOverride != nil && *pointOverride != basePoints {
		if err := s.writeAudit(ctx, r, actor, models.AuditActionAdjustPoints, submission.ID, map[string]interface{}{
			"base_points":  basePoints,
			"final_points": finalPoints,
			"reason":       note,
		}); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

func (s *reviewService) writeAudit(ctx context.Context, r *repository.Repositories, actor ReviewActor, action string, submissionID uint, metadata map[string]interface{}) error {
	entityID := submissionID
	return r.Audit.Create(ctx, &models.AuditLog{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &entityID,
		Metadata:   datatypes.JSONMap(metadata),
	})
}

// publishCredit records metrics and publishes the credit event once the
// transaction is durable.
func (s *reviewService) publishCredit(ctx context.Context, entry *models.PointsLedgerEntry) {
	if entry == nil {
		return
	}

	observability.PointsCredited().WithLabelValues(string(entry.Source)).Inc()
	if s.publisher != nil {
		s.publisher.PointsCredited(ctx, PointsCreditedEvent{
			UserID:       entry.UserID,
			ActivityCode: entry.ActivityCode,
			Delta:        entry.Delta,
			Source:       entry.Source,
			CreditedAt:   entry.OccurredAt,
		})
	}
}
