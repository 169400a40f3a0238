package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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

// lmsProviderPrefix namespaces the ledger idempotency key for webhook credits.
const lmsProviderPrefix = "lms"

// recognisedTags maps normalised course-completion tags to the stage they
// credit. Tags outside this allow-list are stored but never actioned.
var recognisedTags = map[string]models.ActivityCode{
	"leaps-learn-course-complete": models.ActivityLearn,
}

// WebhookService converts asynchronous course-completion signals into ledger
// credits through the same idempotent path as manual review, without
// double-crediting on redelivery and without crediting ineligible users.
type WebhookService interface {
	Ingest(ctx context.Context, payload dto.WebhookEventRequest) (dto.WebhookEventResult, error)
	Reprocess(ctx context.Context, eventID uint, actor ReviewActor) (dto.WebhookEventResult, error)
	List(ctx context.Context, req dto.WebhookEventListRequest) (dto.WebhookEventListResponse, error)
}

type webhookService struct {
	users     repository.UserRepository
	events    repository.WebhookEventRepository
	tx        repository.TxManager
	badges    BadgeEvaluator
	publisher EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWebhookService constructs the event ingestor.
func NewWebhookService(
	users repository.UserRepository,
	events repository.WebhookEventRepository,
	tx repository.TxManager,
	badges BadgeEvaluator,
	publisher EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) WebhookService {
	return &webhookService{
		users:     users,
		events:    events,
		tx:        tx,
		badges:    badges,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "webhook_service").Logger(),
		now:       time.Now,
	}
}

func (s *webhookService) Ingest(ctx context.Context, payload dto.WebhookEventRequest) (dto.WebhookEventResult, error) {
	tracer := otel.Tracer("github.com/leaps-program/leaps-api/internal/service/webhook")
	ctx, span := tracer.Start(ctx, "webhook.ingest")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.WebhookEventResult{}, err
	}

	event, err := s.findOrStoreEvent(ctx, payload)
	if err != nil {
		span.RecordError(err)
		return dto.WebhookEventResult{}, err
	}
	span.SetAttributes(
		attribute.Int64("webhook.event_id", int64(event.ID)),
		attribute.String("webhook.tag", event.Tag),
	)

	// The automated path never surfaces eligibility as an error; the stored
	// status is the terminal outcome.
	result, err := s.process(ctx, &event, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "processing_failed")
		return dto.WebhookEventResult{}, err
	}

	span.SetAttributes(attribute.String("webhook.status", result.Status))
	return result, nil
}

func (s *webhookService) Reprocess(ctx context.Context, eventID uint, actor ReviewActor) (dto.WebhookEventResult, error) {
	tracer := otel.Tracer("github.com/leaps-program/leaps-api/internal/service/webhook")
	ctx, span := tracer.Start(ctx, "webhook.reprocess")
	span.SetAttributes(
		attribute.Int64("webhook.event_id", int64(eventID)),
		attribute.Int64("webhook.actor_id", int64(actor.ID)),
	)
	defer span.End()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WebhookEventResult{}, ErrEventNotFound
		}
		span.RecordError(err)
		return dto.WebhookEventResult{}, err
	}

	result, err := s.process(ctx, &event, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "processing_failed")
		return dto.WebhookEventResult{}, err
	}

	span.SetAttributes(attribute.String("webhook.status", result.Status))
	return result, nil
}

func (s *webhookService) List(ctx context.Context, req dto.WebhookEventListRequest) (dto.WebhookEventListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WebhookEventListResponse{}, err
	}

	filter := repository.WebhookEventFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Status != nil {
		status := models.WebhookEventStatus(*req.Status)
		filter.Status = &status
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	events, total, err := s.events.List(ctx, filter)
	if err != nil {
		return dto.WebhookEventListResponse{}, err
	}

	items := make([]dto.WebhookEventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, dto.NewWebhookEventResponse(event))
	}

	return dto.WebhookEventListResponse{Items: items, Total: total}, nil
}

// findOrStoreEvent normalises the delivery and resolves it to a stored event
// row, creating one on first sight. A racing duplicate insert loses against
// the (event_id, tag) unique index and falls back to the stored row.
func (s *webhookService) findOrStoreEvent(ctx context.Context, payload dto.WebhookEventRequest) (models.WebhookEvent, error) {
	eventID := strings.TrimSpace(payload.EventID)
	tag := strings.ToLower(strings.TrimSpace(payload.Tag))

	existing, err := s.events.FindByEventIDAndTag(ctx, eventID, tag)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.WebhookEvent{}, err
	}

	event := models.WebhookEvent{
		EventID:    eventID,
		Tag:        tag,
		ContactID:  strings.TrimSpace(payload.ContactID),
		Email:      strings.ToLower(strings.TrimSpace(payload.Email)),
		Status:     models.WebhookEventReceived,
		RawPayload: datatypes.JSONMap(payload.Raw),
	}
	if err := s.events.Create(ctx, &event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.events.FindByEventIDAndTag(ctx, eventID, tag)
		}
		return models.WebhookEvent{}, err
	}
	return event, nil
}

// process runs the crediting pipeline against a stored event. It is
// re-entrant: reprocessing a handled event converges on duplicate without new
// side effects. Interactive reprocessing surfaces ineligibility as an error;
// the webhook path records it silently.
func (s *webhookService) process(ctx context.Context, event *models.WebhookEvent, interactive bool) (dto.WebhookEventResult, error) {
	activityCode, actionable := recognisedTags[event.Tag]
	if !actionable {
		return s.finishOutside(ctx, event, models.WebhookEventIgnored)
	}

	user, resolved, err := s.resolveUser(ctx, event)
	if err != nil {
		return dto.WebhookEventResult{}, err
	}
	if !resolved {
		return s.finishOutside(ctx, event, models.WebhookEventQueuedUnmatched)
	}

	event.UserID = &user.ID
	if !user.CanEarnPoints() {
		result, err := s.finishOutside(ctx, event, models.WebhookEventRejectedIneligible)
		if err != nil {
			return dto.WebhookEventResult{}, err
		}
		if interactive {
			return result, ErrIneligible
		}
		return result, nil
	}

	var (
		status models.WebhookEventStatus
		credit *models.PointsLedgerEntry
	)

	// Grant marker, ledger credit, badge re-evaluation and the status flip
	// commit as one unit: a crash between grant and credit cannot leave a
	// granted marker with no corresponding points.
	err = s.tx.InTx(ctx, func(r *repository.Repositories) error {
		status = models.WebhookEventProcessed
		credit = nil

		grant := &models.TagGrant{UserID: user.ID, Tag: event.Tag}
		if err := r.TagGrants.Create(ctx, grant); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			// Same named credit already granted to this user, possibly under
			// a different upstream event id. Expected under redelivery.
			status = models.WebhookEventDuplicate
			return s.markEvent(ctx, r, event, status)
		}

		externalSource := lmsProviderPrefix
		externalEventID := fmt.Sprintf("%s:%s|tag:%s", lmsProviderPrefix, event.EventID, event.Tag)
		entry := &models.PointsLedgerEntry{
			UserID:          user.ID,
			ActivityCode:    activityCode,
			Delta:           ComputePoints(activityCode, nil),
			Source:          models.PointsSourceWebhook,
			ExternalSource:  &externalSource,
			ExternalEventID: &externalEventID,
			OccurredAt:      s.now(),
			Metadata: datatypes.JSONMap{
				"event_id": event.EventID,
				"tag":      event.Tag,
			},
		}
		if err := r.Ledger.Create(ctx, entry); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			// A different tag grant mapped to the same underlying event id.
			status = models.WebhookEventDuplicate
			return s.markEvent(ctx, r, event, status)
		}
		credit = entry

		if err := s.badges.GrantBadgesForUser(ctx, r, user.ID); err != nil {
			return err
		}

		if err := s.markEvent(ctx, r, event, models.WebhookEventProcessed); err != nil {
			return err
		}

		actorID := user.ID
		return r.Audit.Create(ctx, &models.AuditLog{
			ActorID:    actorID,
			ActorRole:  string(user.Role),
			Action:     models.AuditActionProcessWebhookEvent,
			EntityType: "webhook_event",
			EntityID:   &event.ID,
			Metadata: datatypes.JSONMap{
				"tag":    event.Tag,
				"points": entry.Delta,
			},
		})
	})
	if err != nil {
		return dto.WebhookEventResult{}, err
	}

	observability.WebhookEvents().WithLabelValues(string(status)).Inc()
	if credit != nil {
		observability.PointsCredited().WithLabelValues(string(credit.Source)).Inc()
		if s.publisher != nil {
			s.publisher.PointsCredited(ctx, PointsCreditedEvent{
				UserID:       credit.UserID,
				ActivityCode: credit.ActivityCode,
				Delta:        credit.Delta,
				Source:       credit.Source,
				CreditedAt:   credit.OccurredAt,
			})
		}
	}

	return dto.WebhookEventResult{EventID: event.ID, Status: string(status)}, nil
}

// resolveUser matches the delivery to a program user: stored contact id
// first, then email. An email hit backfills the contact id for future
// fast-path lookups; the backfill is a cache fill, not a correctness
// requirement, so its failure is only logged.
func (s *webhookService) resolveUser(ctx context.Context, event *models.WebhookEvent) (models.User, bool, error) {
	if event.ContactID != "" {
		user, err := s.users.GetByLMSContactID(ctx, event.ContactID)
		if err == nil {
			return user, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, false, err
		}
	}

	if event.Email == "" {
		return models.User{}, false, nil
	}

	user, err := s.users.GetByEmail(ctx, event.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, false, nil
		}
		return models.User{}, false, err
	}

	if event.ContactID != "" && user.LMSContactID == nil {
		if err := s.users.SetLMSContactID(ctx, user.ID, event.ContactID); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to backfill lms contact id")
		}
	}

	return user, true, nil
}

// finishOutside records a terminal status reached before the crediting
// transaction starts.
func (s *webhookService) finishOutside(ctx context.Context, event *models.WebhookEvent, status models.WebhookEventStatus) (dto.WebhookEventResult, error) {
	event.Status = status
	if err := s.events.Update(ctx, event); err != nil {
		return dto.WebhookEventResult{}, err
	}
	observability.WebhookEvents().WithLabelValues(string(status)).Inc()
	return dto.WebhookEventResult{EventID: event.ID, Status: string(status)}, nil
}

func (s *webhookService) markEvent(ctx context.Context, r *repository.Repositories, event *models.WebhookEvent, status models.WebhookEventStatus) error {
	event.Status = status
	if status == models.WebhookEventProcessed {
		processedAt := s.now()
		event.ProcessedAt = &processedAt
	}
	return r.WebhookEvents.Update(ctx, event)
}
