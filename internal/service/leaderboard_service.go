package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/repository"
)

const leaderboardDefaultLimit = 20

// LeaderboardService produces ranked point totals and per-user breakdowns.
// Totals are always derived from the ledger by summation; the leaderboard
// view is cached briefly since it is the hottest read path.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, limit int) (dto.LeaderboardResponse, error)
	UserPoints(ctx context.Context, userID uint) (dto.UserPointsResponse, error)
}

type leaderboardService struct {
	ledger   repository.LedgerRepository
	users    repository.UserRepository
	badges   repository.BadgeRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLeaderboardService constructs the leaderboard read model.
func NewLeaderboardService(
	ledger repository.LedgerRepository,
	users repository.UserRepository,
	badges repository.BadgeRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) LeaderboardService {
	return &leaderboardService{
		ledger:   ledger,
		users:    users,
		badges:   badges,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "leaderboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context, limit int) (dto.LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = leaderboardDefaultLimit
	}

	cacheKey := leaderboardCacheKey(limit)
	tracer := otel.Tracer("github.com/leaps-program/leaps-api/internal/service/leaderboard")
	ctx, span := tracer.Start(ctx, "leaderboard.rank")
	span.SetAttributes(attribute.Int("leaderboard.limit", limit))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("leaderboard.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
			span.RecordError(err)
		}
	}

	rows, err := s.ledger.LeaderboardTotals(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "leaderboard_totals_failed")
		return dto.LeaderboardResponse{}, err
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return dto.LeaderboardResponse{}, err
	}
	names := make(map[uint]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Name
	}

	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:   i + 1,
			UserID: row.UserID,
			Name:   names[row.UserID],
			Total:  row.Total,
		})
	}

	response := dto.LeaderboardResponse{Entries: entries, GeneratedAt: s.now()}
	span.SetAttributes(attribute.Int("leaderboard.entry_count", len(entries)))

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *leaderboardService) UserPoints(ctx context.Context, userID uint) (dto.UserPointsResponse, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserPointsResponse{}, ErrUserNotFound
		}
		return dto.UserPointsResponse{}, err
	}

	totals, err := s.ledger.SumsByActivity(ctx, userID)
	if err != nil {
		return dto.UserPointsResponse{}, err
	}

	byActivity := make(map[string]int, len(totals))
	total := 0
	for _, row := range totals {
		byActivity[string(row.ActivityCode)] = row.Total
		total += row.Total
	}

	earned, err := s.badges.ListEarned(ctx, userID)
	if err != nil {
		return dto.UserPointsResponse{}, err
	}

	slugs := make([]string, 0, len(earned))
	if len(earned) > 0 {
		catalogue, err := s.badges.List(ctx)
		if err != nil {
			return dto.UserPointsResponse{}, err
		}
		bySlug := make(map[uint]string, len(catalogue))
		for _, badge := range catalogue {
			bySlug[badge.ID] = badge.Slug
		}
		for _, award := range earned {
			if slug, ok := bySlug[award.BadgeID]; ok {
				slugs = append(slugs, slug)
			}
		}
	}

	return dto.UserPointsResponse{
		UserID:     userID,
		Total:      total,
		ByActivity: byActivity,
		Badges:     slugs,
	}, nil
}

func leaderboardCacheKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}
