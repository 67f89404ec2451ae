package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
)

func seedCleanupUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     "Cleanup User",
		Email:    email,
		USN:      "1XX21CS000",
		Password: "hashed-password",
		Tag:      email,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCleanupTokens(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Now().UTC()

	require.NoError(t, db.Create(&models.EmailVerification{
		Email:     "stale@example.edu",
		Code:      "111111",
		ExpiresAt: now.Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.EmailVerification{
		Email:     "fresh@example.edu",
		Code:      "222222",
		ExpiresAt: now.Add(time.Hour),
	}).Error)

	staleExpiry := now.Add(-time.Hour)
	staleUser := seedCleanupUser(t, db, "stale-reset@example.edu")
	require.NoError(t, db.Model(staleUser).Updates(map[string]any{
		"reset_token":        "stale-token",
		"reset_token_expiry": staleExpiry,
	}).Error)

	freshExpiry := now.Add(time.Hour)
	freshUser := seedCleanupUser(t, db, "fresh-reset@example.edu")
	require.NoError(t, db.Model(freshUser).Updates(map[string]any{
		"reset_token":        "fresh-token",
		"reset_token_expiry": freshExpiry,
	}).Error)

	stats, err := CleanupTokens(context.Background(), db, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.EmailVerifications)
	require.EqualValues(t, 1, stats.PasswordResets)

	var codes []models.EmailVerification
	require.NoError(t, db.Find(&codes).Error)
	require.Len(t, codes, 1)
	require.Equal(t, "fresh@example.edu", codes[0].Email)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", staleUser.ID).Error)
	require.Empty(t, reloaded.ResetToken)
	reloaded = models.User{}
	require.NoError(t, db.First(&reloaded, "id = ?", freshUser.ID).Error)
	require.Equal(t, "fresh-token", reloaded.ResetToken)
}

func TestCleanupNotificationsKeepsUnreadAndRecent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Now().UTC()
	user := seedCleanupUser(t, db, "reader@example.edu")

	oldRead := models.Notification{UserID: user.ID, Type: "like", IsRead: true}
	require.NoError(t, db.Create(&oldRead).Error)
	require.NoError(t, db.Model(&oldRead).
		Update("created_at", now.AddDate(0, 0, -120)).Error)

	oldUnread := models.Notification{UserID: user.ID, Type: "like", IsRead: false}
	require.NoError(t, db.Create(&oldUnread).Error)
	require.NoError(t, db.Model(&oldUnread).
		Update("created_at", now.AddDate(0, 0, -120)).Error)

	recentRead := models.Notification{UserID: user.ID, Type: "like", IsRead: true}
	require.NoError(t, db.Create(&recentRead).Error)

	removed, err := CleanupNotifications(context.Background(), db, now, 90)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, notification := range remaining {
		require.NotEqual(t, oldRead.ID, notification.ID)
	}
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Now().UTC()

	require.NoError(t, db.Create(&models.EmailVerification{
		Email:     "stale@example.edu",
		Code:      "111111",
		ExpiresAt: now.Add(-time.Hour),
	}).Error)

	cleaner := NewCleaner(db, nil, WithNow(func() time.Time { return now }))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.EmailVerification{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
