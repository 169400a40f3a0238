package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/models"
)

// LeaderboardRow is one aggregated ledger total for a user.
type LeaderboardRow struct {
	UserID uint `json:"user_id"`
	Total  int  `json:"total"`
}

// ActivityTotal is a per-activity sum of deltas for one user.
type ActivityTotal struct {
	ActivityCode models.ActivityCode `json:"activity_code"`
	Total        int                 `json:"total"`
}

// LedgerRepository persists immutable point deltas. The interface deliberately
// exposes no update or delete: corrections are offsetting inserts, and totals
// are always derived by summation. Create returns gorm.ErrDuplicatedKey when
// the (external_source, external_event_id) idempotency key already exists.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.PointsLedgerEntry) error
	ListByUser(ctx context.Context, userID uint) ([]models.PointsLedgerEntry, error)
	SumByUser(ctx context.Context, userID uint) (int, error)
	SumsByActivity(ctx context.Context, userID uint) ([]ActivityTotal, error)
	LeaderboardTotals(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository instantiates the repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *models.PointsLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uint) ([]models.PointsLedgerEntry, error) {
	var entries []models.PointsLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) SumByUser(ctx context.Context, userID uint) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).Model(&models.PointsLedgerEntry{}).
		Select("SUM(delta)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *ledgerRepository) SumsByActivity(ctx context.Context, userID uint) ([]ActivityTotal, error) {
	var totals []ActivityTotal
	err := r.db.WithContext(ctx).Model(&models.PointsLedgerEntry{}).
		Select("activity_code, SUM(delta) AS total").
		Where("user_id = ?", userID).
		Group("activity_code").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *ledgerRepository) LeaderboardTotals(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	query := r.db.WithContext(ctx).Model(&models.PointsLedgerEntry{}).
		Select("user_id, SUM(delta) AS total").
		Group("user_id").
		Order("total DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []LeaderboardRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
