package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leaps-program/leaps-api/internal/models"
)

// BadgeRepository persists the badge catalogue and earned badges.
type BadgeRepository interface {
	List(ctx context.Context) ([]models.Badge, error)
	ListEarned(ctx context.Context, userID uint) ([]models.UserBadge, error)
	Award(ctx context.Context, userID, badgeID uint) error
	Seed(ctx context.Context, badges []models.Badge) error
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository instantiates the repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).Order("min_points ASC").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) ListEarned(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var earned []models.UserBadge
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&earned).Error; err != nil {
		return nil, err
	}
	return earned, nil
}

// Award is idempotent: the conflict on (user_id, badge_id) is discarded.
func (r *badgeRepository) Award(ctx context.Context, userID, badgeID uint) error {
	grant := models.UserBadge{UserID: userID, BadgeID: badgeID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&grant).Error
}

func (r *badgeRepository) Seed(ctx context.Context, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&badges).Error
}
