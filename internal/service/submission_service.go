package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/observability"
	"github.com/leaps-program/leaps-api/internal/repository"
)

// SubmissionService manages evidence submissions up to the point a reviewer
// takes over.
type SubmissionService interface {
	Create(ctx context.Context, actorID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, req dto.SubmissionListRequest) (dto.SubmissionListResponse, error)
}

type submissionService struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	guard       *AdmissionGuard
	payloads    *PayloadValidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(
	users repository.UserRepository,
	submissions repository.SubmissionRepository,
	guard *AdmissionGuard,
	payloads *PayloadValidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		users:       users,
		submissions: submissions,
		guard:       guard,
		payloads:    payloads,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, actorID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrUserNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !user.CanEarnPoints() {
		return dto.SubmissionResponse{}, ErrIneligible
	}

	code := models.ActivityCode(payload.ActivityCode)
	def, ok := models.ActivityByCode(code)
	if !ok {
		return dto.SubmissionResponse{}, ErrActivityNotFound
	}

	if err := s.payloads.Validate(code, payload.Payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.guard.Check(ctx, actorID, def, payload.Payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	visibility := payload.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	submission := models.Submission{
		UserID:       actorID,
		ActivityCode: code,
		Status:       models.SubmissionStatusPending,
		Visibility:   visibility,
		Payload:      s.sanitizePayload(payload.Payload),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsCreated().WithLabelValues(string(code)).Inc()
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("user_id", actorID).
		Str("activity", string(code)).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, req dto.SubmissionListRequest) (dto.SubmissionListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubmissionListResponse{}, err
	}

	filter := repository.SubmissionFilter{
		UserID:   req.UserID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.ActivityCode != nil {
		code := models.ActivityCode(*req.ActivityCode)
		filter.ActivityCode = &code
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	submissions, total, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.SubmissionListResponse{}, err
	}

	items := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, dto.NewSubmissionResponse(submission))
	}

	return dto.SubmissionListResponse{Items: items, Total: total}, nil
}

// sanitizePayload strips markup from free-text payload values. Numeric fields
// and evidence paths pass through untouched.
func (s *submissionService) sanitizePayload(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}
	cleaned := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		if text, ok := value.(string); ok {
			cleaned[key] = strings.TrimSpace(s.sanitizer.Sanitize(text))
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}
