package service

import (
	"context"
	"time"

	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/repository"
)

// Default rolling-quota configuration for the Amplify stage.
const (
	DefaultPeersCeiling    = 50
	DefaultStudentsCeiling = 200
	quotaWindow            = 7 * 24 * time.Hour
)

// AdmissionGuard evaluates the activity-specific admission rules before a new
// submission may be created. It is stateless: the rolling window is recomputed
// from stored submissions on every call rather than kept in a mutable counter
// that could drift. The read-then-write gap between quota check and insert is
// an accepted soft limit under concurrent submissions.
type AdmissionGuard struct {
	submissions     repository.SubmissionRepository
	peersCeiling    int
	studentsCeiling int
	now             func() time.Time
}

// NewAdmissionGuard constructs the guard with the configured quota ceilings.
func NewAdmissionGuard(submissions repository.SubmissionRepository, peersCeiling, studentsCeiling int) *AdmissionGuard {
	if peersCeiling <= 0 {
		peersCeiling = DefaultPeersCeiling
	}
	if studentsCeiling <= 0 {
		studentsCeiling = DefaultStudentsCeiling
	}
	return &AdmissionGuard{
		submissions:     submissions,
		peersCeiling:    peersCeiling,
		studentsCeiling: studentsCeiling,
		now:             time.Now,
	}
}

// Check applies the definition's admission policy to a prospective submission.
func (g *AdmissionGuard) Check(ctx context.Context, userID uint, def models.ActivityDefinition, payload map[string]interface{}) error {
	switch def.Admission {
	case models.AdmissionSingleActive:
		count, err := g.submissions.CountActive(ctx, userID, def.Code)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateSubmission
		}
		return nil
	case models.AdmissionRollingQuota:
		return g.checkRollingQuota(ctx, userID, def.Code, payload)
	default:
		return nil
	}
}

// checkRollingQuota sums trained quantities over the trailing window and
// verifies neither ceiling would be exceeded by admitting the new values.
func (g *AdmissionGuard) checkRollingQuota(ctx context.Context, userID uint, code models.ActivityCode, payload map[string]interface{}) error {
	since := g.now().Add(-quotaWindow)
	recent, err := g.submissions.CreatedSince(ctx, userID, code, since)
	if err != nil {
		return err
	}

	peers := payloadInt(payload, "peers_trained")
	students := payloadInt(payload, "students_trained")
	for _, submission := range recent {
		peers += payloadInt(submission.Payload, "peers_trained")
		students += payloadInt(submission.Payload, "students_trained")
	}

	if peers > g.peersCeiling {
		return &QuotaExceededError{Dimension: "peers", Attempted: peers, Ceiling: g.peersCeiling}
	}
	if students > g.studentsCeiling {
		return &QuotaExceededError{Dimension: "students", Attempted: students, Ceiling: g.studentsCeiling}
	}
	return nil
}
