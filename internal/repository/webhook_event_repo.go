package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/models"
)

// WebhookEventFilter narrows stored event queries.
type WebhookEventFilter struct {
	Status   *models.WebhookEventStatus
	Page     int
	PageSize int
}

// WebhookEventRepository persists inbound LMS deliveries. Rows are never
// deleted; the status field (plus the lazily matched user) is the only
// mutation.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
	GetByID(ctx context.Context, id uint) (models.WebhookEvent, error)
	FindByEventIDAndTag(ctx context.Context, eventID, tag string) (models.WebhookEvent, error)
	Update(ctx context.Context, event *models.WebhookEvent) error
	List(ctx context.Context, filter WebhookEventFilter) ([]models.WebhookEvent, int64, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository instantiates the repository.
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *webhookEventRepository) GetByID(ctx context.Context, id uint) (models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return models.WebhookEvent{}, err
	}
	return event, nil
}

func (r *webhookEventRepository) FindByEventIDAndTag(ctx context.Context, eventID, tag string) (models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("tag = ?", tag).
		First(&event).Error; err != nil {
		return models.WebhookEvent{}, err
	}
	return event, nil
}

func (r *webhookEventRepository) Update(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *webhookEventRepository) List(ctx context.Context, filter WebhookEventFilter) ([]models.WebhookEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WebhookEvent{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var events []models.WebhookEvent
	if err := query.Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
