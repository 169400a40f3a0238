package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/models"
)

// TagGrantRepository persists per-user course-completion grant markers.
// Create returns gorm.ErrDuplicatedKey when the (user, tag) pair was already
// granted, which callers treat as an expected redelivery, not an error.
type TagGrantRepository interface {
	Create(ctx context.Context, grant *models.TagGrant) error
}

type tagGrantRepository struct {
	db *gorm.DB
}

// NewTagGrantRepository instantiates the repository.
func NewTagGrantRepository(db *gorm.DB) TagGrantRepository {
	return &tagGrantRepository{db: db}
}

func (r *tagGrantRepository) Create(ctx context.Context, grant *models.TagGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}
