package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
	"github.com/universe-app/universe/internal/notifications"
	apperrors "github.com/universe-app/universe/pkg/errors"
)

func TestNotificationCreateAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateNotificationInput{
			UserID:  user.ID,
			Type:    models.NotificationLike,
			Message: "someone liked your post",
			Link:    "/posts/p1",
		})
		require.NoError(t, err)
	}

	rows, total, err := svc.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, Limit: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, rows, 2)

	rows, total, err = svc.ListForUser(ctx, ListNotificationsInput{UserID: user.ID, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, rows, 1)
}

func TestNotificationCreatePushesPersistedRow(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	hub := notifications.NewHub()
	svc, err := NewNotificationService(db, hub)
	require.NoError(t, err)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(user.ID, w, r)
	}))
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), "", "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()

	// The subscriber registers after the handshake; sync on a marker event.
	require.Eventually(t, func() bool {
		hub.Broadcast(user.ID, notifications.Event{Event: "sync"})
		_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		var ev notifications.Event
		return websocket.JSON.Receive(conn, &ev) == nil && ev.Event == "sync"
	}, 2*time.Second, 20*time.Millisecond)

	created, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  user.ID,
		Type:    models.NotificationLike,
		Message: "someone liked your post",
	})
	require.NoError(t, err)

	var row models.Notification
	require.NoError(t, db.First(&row, "id = ?", created.ID).Error)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var ev notifications.Event
		require.NoError(t, websocket.JSON.Receive(conn, &ev))
		if ev.Event != "notification.created" {
			continue
		}
		require.NotNil(t, ev.Notification)
		require.Equal(t, row.ID, ev.Notification.ID)
		require.Equal(t, notifications.Channel(user.ID), ev.Channel)
		break
	}
}

func TestNotificationCreateSurvivesUndeliveredPush(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, notifications.NewHub())
	require.NoError(t, err)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	// No subscriber is connected; the push reaches nobody.
	created, err := svc.Create(ctx, CreateNotificationInput{
		UserID: user.ID,
		Type:   models.NotificationComment,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("id = ?", created.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestNotificationCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateNotificationInput{Type: models.NotificationLike})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateNotificationInput{UserID: "u1"})
	require.Error(t, err)
}

func TestNotificationMarkReadScopedToOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")

	created, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  owner.ID,
		Type:    models.NotificationFollow,
		Message: "bob followed you",
	})
	require.NoError(t, err)
	require.False(t, created.IsRead)

	_, err = svc.MarkRead(ctx, other.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := svc.MarkRead(ctx, owner.ID, created.ID)
	require.NoError(t, err)
	require.True(t, updated.IsRead)
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, CreateNotificationInput{
			UserID: user.ID,
			Type:   models.NotificationComment,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(ctx, user.ID))

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread).Error)
	require.EqualValues(t, 0, unread)
}

func TestNotificationDeleteScopedToOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")

	created, err := svc.Create(ctx, CreateNotificationInput{
		UserID: owner.ID,
		Type:   models.NotificationFollow,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, other.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, owner.ID, created.ID))
	err = svc.Delete(ctx, owner.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
