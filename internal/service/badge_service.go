package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/leaps-program/leaps-api/internal/repository"
)

// BadgeEvaluator re-checks badge criteria after a point credit. It is
// idempotent and safe to call unconditionally: already-earned badges no-op.
// The repository bundle parameter keeps evaluation inside the caller's
// transaction.
type BadgeEvaluator interface {
	GrantBadgesForUser(ctx context.Context, r *repository.Repositories, userID uint) error
}

type badgeService struct {
	logger zerolog.Logger
}

// NewBadgeService constructs the badge evaluator.
func NewBadgeService(logger zerolog.Logger) BadgeEvaluator {
	return &badgeService{
		logger: logger.With().Str("component", "badge_service").Logger(),
	}
}

func (s *badgeService) GrantBadgesForUser(ctx context.Context, r *repository.Repositories, userID uint) error {
	total, err := r.Ledger.SumByUser(ctx, userID)
	if err != nil {
		return err
	}

	badges, err := r.Badges.List(ctx)
	if err != nil {
		return err
	}

	for _, badge := range badges {
		if total < badge.MinPoints {
			continue
		}
		if err := r.Badges.Award(ctx, userID, badge.ID); err != nil {
			return err
		}
		s.logger.Debug().Uint("user_id", userID).Str("badge", badge.Slug).Msg("badge criteria satisfied")
	}

	return nil
}
