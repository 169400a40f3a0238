package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	UserID       *uint
	ActivityCode *models.ActivityCode
	Status       *string
	Page         int
	PageSize     int
}

// SubmissionRepository defines data operations for submissions. Submissions
// are never deleted; the only mutation is the review outcome.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	Update(ctx context.Context, submission *models.Submission) error
	CountActive(ctx context.Context, userID uint, code models.ActivityCode) (int64, error)
	CreatedSince(ctx context.Context, userID uint, code models.ActivityCode, since time.Time) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.ActivityCode != nil {
		query = query.Where("activity_code = ?", *filter.ActivityCode)
	}

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

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// CountActive counts pending and approved submissions, the states that block
// a new submission under the single-active admission policy.
func (r *submissionRepository) CountActive(ctx context.Context, userID uint, code models.ActivityCode) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("activity_code = ?", code).
		Where("status IN ?", []string{models.SubmissionStatusPending, models.SubmissionStatusApproved}).
		Count(&count).Error
	return count, err
}

// CreatedSince returns submissions created strictly after the given instant,
// newest first. Used by the rolling-window quota evaluation.
func (r *submissionRepository) CreatedSince(ctx context.Context, userID uint, code models.ActivityCode, since time.Time) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("activity_code = ?", code).
		Where("created_at > ?", since).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
