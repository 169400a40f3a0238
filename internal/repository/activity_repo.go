package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leaps-program/leaps-api/internal/models"
)

// ActivityRepository persists the fixed stage reference rows.
type ActivityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	Seed(ctx context.Context, defs []models.ActivityDefinition) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) List(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepository) Seed(ctx context.Context, defs []models.ActivityDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	rows := make([]models.Activity, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, models.Activity{
			Code:          def.Code,
			Name:          def.Name,
			DefaultPoints: def.DefaultPoints,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&rows).Error
}
