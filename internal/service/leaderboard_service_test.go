package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/repository"
)

func newLeaderboardService(t *testing.T, db *gorm.DB, cache *redis.Client) LeaderboardService {
	t.Helper()
	return NewLeaderboardService(
		repository.NewLedgerRepository(db),
		repository.NewUserRepository(db),
		repository.NewBadgeRepository(db),
		cache,
		time.Minute,
		testLogger(),
	)
}

func creditPoints(t *testing.T, db *gorm.DB, userID uint, code models.ActivityCode, delta int) {
	t.Helper()
	require.NoError(t, db.Create(&models.PointsLedgerEntry{
		UserID:       userID,
		ActivityCode: code,
		Delta:        delta,
		Source:       models.PointsSourceManual,
		OccurredAt:   time.Now(),
	}).Error)
}

func TestLeaderboardServiceRanksByDerivedTotals(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.org", models.RoleParticipant, false)
	bob := createTestUser(t, db, "bob@example.org", models.RoleParticipant, false)
	creditPoints(t, db, alice.ID, models.ActivityExplore, 20)
	creditPoints(t, db, alice.ID, models.ActivityPresent, 30)
	creditPoints(t, db, bob.ID, models.ActivityShine, 40)

	svc := newLeaderboardService(t, db, nil)
	board, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	require.Equal(t, alice.ID, board.Entries[0].UserID)
	require.Equal(t, 50, board.Entries[0].Total)
	require.Equal(t, 1, board.Entries[0].Rank)
	require.Equal(t, bob.ID, board.Entries[1].UserID)
	require.Equal(t, 2, board.Entries[1].Rank)
}

func TestLeaderboardServiceCorrectionsLowerTotals(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.org", models.RoleParticipant, false)
	creditPoints(t, db, alice.ID, models.ActivityExplore, 20)
	// Offsetting insert, never an update.
	creditPoints(t, db, alice.ID, models.ActivityExplore, -20)

	svc := newLeaderboardService(t, db, nil)
	board, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	require.Equal(t, 0, board.Entries[0].Total)
}

func TestLeaderboardServiceServesFromCache(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.org", models.RoleParticipant, false)
	creditPoints(t, db, alice.ID, models.ActivityExplore, 20)

	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})

	svc := newLeaderboardService(t, db, cache)

	first, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	// New credits are invisible until the cache entry expires.
	creditPoints(t, db, alice.ID, models.ActivityPresent, 30)

	second, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 20, second.Entries[0].Total)

	server.FastForward(2 * time.Minute)

	third, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 50, third.Entries[0].Total)
}

func TestLeaderboardServiceUserPointsBreakdown(t *testing.T) {
	db := newTestDB(t)
	seedBadges(t, db)
	alice := createTestUser(t, db, "alice@example.org", models.RoleParticipant, false)
	creditPoints(t, db, alice.ID, models.ActivityExplore, 20)
	creditPoints(t, db, alice.ID, models.ActivityAmplify, 16)
	creditPoints(t, db, alice.ID, models.ActivityAmplify, 30)

	require.NoError(t, repository.NewBadgeRepository(db).Award(context.Background(), alice.ID, 1))

	svc := newLeaderboardService(t, db, nil)
	points, err := svc.UserPoints(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, 66, points.Total)
	require.Equal(t, 20, points.ByActivity[string(models.ActivityExplore)])
	require.Equal(t, 46, points.ByActivity[string(models.ActivityAmplify)])
	require.Len(t, points.Badges, 1)
}

func TestLeaderboardServiceUserPointsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := newLeaderboardService(t, db, nil)

	_, err := svc.UserPoints(context.Background(), 77)
	require.ErrorIs(t, err, ErrUserNotFound)
}
