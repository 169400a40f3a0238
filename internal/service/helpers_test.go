package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

var testDBCounter atomic.Int64

// newTestDB opens a per-test in-memory database so tests cannot observe each
// other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Submission{},
		&models.PointsLedgerEntry{},
		&models.TagGrant{},
		&models.WebhookEvent{},
		&models.Badge{},
		&models.UserBadge{},
		&models.AuditLog{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role, ineligible bool) models.User {
	t.Helper()

	user := models.User{
		Name:       strings.Split(email, "@")[0],
		Email:      email,
		Role:       role,
		Ineligible: ineligible,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createPendingSubmission(t *testing.T, db *gorm.DB, userID uint, code models.ActivityCode, payload map[string]interface{}) models.Submission {
	t.Helper()

	submission := models.Submission{
		UserID:       userID,
		ActivityCode: code,
		Status:       models.SubmissionStatusPending,
		Visibility:   models.VisibilityPublic,
		Payload:      payload,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func ledgerEntriesFor(t *testing.T, db *gorm.DB, userID uint) []models.PointsLedgerEntry {
	t.Helper()

	var entries []models.PointsLedgerEntry
	require.NoError(t, db.Where("user_id = ?", userID).Order("id").Find(&entries).Error)
	return entries
}

func auditEntriesFor(t *testing.T, db *gorm.DB, action string) []models.AuditLog {
	t.Helper()

	var entries []models.AuditLog
	require.NoError(t, db.Where("action = ?", action).Order("id").Find(&entries).Error)
	return entries
}

func seedBadges(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, repository.NewBadgeRepository(db).Seed(context.Background(), models.DefaultBadges()))
}
