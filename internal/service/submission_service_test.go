package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/repository"
)

func newSubmissionService(t *testing.T, db *gorm.DB) SubmissionService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	payloads, err := NewPayloadValidator()
	require.NoError(t, err)

	guard := NewAdmissionGuard(repository.NewSubmissionRepository(db), 0, 0)
	return NewSubmissionService(
		repository.NewUserRepository(db),
		repository.NewSubmissionRepository(db),
		guard,
		payloads,
		validate,
		testLogger(),
	)
}

func TestSubmissionServiceCreatePending(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "explorer@example.org", models.RoleParticipant, false)
	svc := newSubmissionService(t, db)

	created, err := svc.Create(context.Background(), user.ID, dto.SubmissionCreateRequest{
		ActivityCode: string(models.ActivityExplore),
		Payload:      map[string]interface{}{"description": "Tried the new lesson planner with my class."},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, models.SubmissionStatusPending, created.Status)
	require.Equal(t, models.VisibilityPublic, created.Visibility)
	require.Nil(t, created.ReviewerID)
}

func TestSubmissionServiceCreateRejectsIneligibleUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "student@example.org", models.RoleParticipant, true)
	svc := newSubmissionService(t, db)

	_, err := svc.Create(context.Background(), user.ID, dto.SubmissionCreateRequest{
		ActivityCode: string(models.ActivityExplore),
		Payload:      map[string]interface{}{"description": "should not be stored"},
	})
	require.ErrorIs(t, err, ErrIneligible)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubmissionServiceCreateRejectsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	_, err := svc.Create(context.Background(), 999, dto.SubmissionCreateRequest{
		ActivityCode: string(models.ActivityExplore),
		Payload:      map[string]interface{}{"description": "no such user"},
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSubmissionServiceCreateRejectsInvalidPayload(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "trainer@example.org", models.RoleParticipant, false)
	svc := newSubmissionService(t, db)

	_, err := svc.Create(context.Background(), user.ID, dto.SubmissionCreateRequest{
		ActivityCode: string(models.ActivityAmplify),
		Payload:      map[string]interface{}{"peers_trained": "three"},
	})

	var schemaErr *SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, string(models.ActivityAmplify), schemaErr.Activity)
}

func TestSubmissionServiceCreateBlocksDuplicateLearn(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "learner@example.org", models.RoleParticipant, false)
	svc := newSubmissionService(t, db)

	payload := dto.SubmissionCreateRequest{
		ActivityCode: string(models.ActivityLearn),
		Payload:      map[string]interface{}{"course_name": "Foundations"},
	}

	_, err := svc.Create(context.Background(), user.ID, payload)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, payload)
	require.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestSubmissionServiceCreateSanitizesMarkup(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "explorer@example.org", models.RoleParticipant, false)
	svc := newSubmissionService(t, db)

	created, err := svc.Create(context.Background(), user.ID, dto.SubmissionCreateRequest{
		ActivityCode: string(models.ActivityExplore),
		Payload:      map[string]interface{}{"description": `<script>alert("x")</script>Classroom notes`},
	})
	require.NoError(t, err)
	require.Equal(t, "Classroom notes", created.Payload["description"])
}

func TestSubmissionServiceGetMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(t, db)

	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceListFilters(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.org", models.RoleParticipant, false)
	bob := createTestUser(t, db, "bob@example.org", models.RoleParticipant, false)
	createPendingSubmission(t, db, alice.ID, models.ActivityExplore, map[string]interface{}{"description": "a"})
	createPendingSubmission(t, db, alice.ID, models.ActivityPresent, map[string]interface{}{"title": "talk"})
	createPendingSubmission(t, db, bob.ID, models.ActivityExplore, map[string]interface{}{"description": "b"})

	svc := newSubmissionService(t, db)

	all, err := svc.List(context.Background(), dto.SubmissionListRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Total)

	code := string(models.ActivityExplore)
	byCode, err := svc.List(context.Background(), dto.SubmissionListRequest{UserID: &alice.ID, ActivityCode: &code})
	require.NoError(t, err)
	require.Equal(t, int64(1), byCode.Total)
	require.Len(t, byCode.Items, 1)
	require.Equal(t, alice.ID, byCode.Items[0].UserID)
}
