package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
)

func newFollowFixture(t *testing.T) (*FollowService, *NotificationService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewFollowService(db, notifications)
	require.NoError(t, err)
	return svc, notifications, db
}

func TestFollowPublicProfileCreatesEdgeAndNotification(t *testing.T) {
	svc, notifications, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createPrivateTestUser(t, db, "bob")
	bob.IsPrivate = false
	require.NoError(t, db.Save(&bob).Error)

	result, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, result.Following)
	require.Nil(t, result.Request)

	var count int64
	require.NoError(t, db.Table("user_followers").
		Where("user_id = ? AND follower_id = ?", bob.ID, alice.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	items, total, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, models.NotificationFollow, items[0].Type)
}

func TestFollowPrivateProfileFilesRequest(t *testing.T) {
	svc, notifications, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	priya := createPrivateTestUser(t, db, "priya")

	result, err := svc.Follow(ctx, alice.ID, priya.ID)
	require.NoError(t, err)
	require.False(t, result.Following)
	require.NotNil(t, result.Request)
	require.Equal(t, models.FollowRequestPending, result.Request.Status)

	// No follow edge yet.
	var count int64
	require.NoError(t, db.Table("user_followers").
		Where("user_id = ?", priya.ID).
		Count(&count).Error)
	require.EqualValues(t, 0, count)

	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: priya.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationFollowRequest, items[0].Type)

	// A second attempt while one is pending conflicts.
	_, err = svc.Follow(ctx, alice.ID, priya.ID)
	require.ErrorIs(t, err, ErrDuplicateFollowRequest)
}

func TestFollowSelfRejected(t *testing.T) {
	svc, _, db := newFollowFixture(t)
	alice := createTestUser(t, db, "alice")

	_, err := svc.Follow(context.Background(), alice.ID, alice.ID)
	require.ErrorIs(t, err, ErrSelfFollow)
}

func TestAcceptFollowRequestAddsEdge(t *testing.T) {
	svc, notifications, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	priya := createPrivateTestUser(t, db, "priya")

	result, err := svc.Follow(ctx, alice.ID, priya.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, priya.ID, result.Request.ID))

	var count int64
	require.NoError(t, db.Table("user_followers").
		Where("user_id = ? AND follower_id = ?", priya.ID, alice.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	var request models.FollowRequest
	require.NoError(t, db.First(&request, "id = ?", result.Request.ID).Error)
	require.Equal(t, models.FollowRequestAccepted, request.Status)

	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: alice.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationFollowAccept, items[0].Type)
}

func TestAcceptFollowRequestWrongRecipient(t *testing.T) {
	svc, _, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	priya := createPrivateTestUser(t, db, "priya")

	result, err := svc.Follow(ctx, alice.ID, priya.ID)
	require.NoError(t, err)

	err = svc.Accept(ctx, alice.ID, result.Request.ID)
	require.ErrorIs(t, err, ErrFollowRequestNotFound)
}

func TestRejectedFollowRequestCanBeRetried(t *testing.T) {
	svc, _, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	priya := createPrivateTestUser(t, db, "priya")

	first, err := svc.Follow(ctx, alice.ID, priya.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Reject(ctx, priya.ID, first.Request.ID))

	// No edge was created.
	var count int64
	require.NoError(t, db.Table("user_followers").
		Where("user_id = ?", priya.ID).
		Count(&count).Error)
	require.EqualValues(t, 0, count)

	// The rejected row does not block a fresh request.
	second, err := svc.Follow(ctx, alice.ID, priya.ID)
	require.NoError(t, err)
	require.NotNil(t, second.Request)
	require.Equal(t, models.FollowRequestPending, second.Request.Status)
	require.NotEqual(t, first.Request.ID, second.Request.ID)
}

func TestCancelFollowRequest(t *testing.T) {
	svc, _, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	priya := createPrivateTestUser(t, db, "priya")

	result, err := svc.Follow(ctx, alice.ID, priya.ID)
	require.NoError(t, err)

	// Only the requester may cancel.
	err = svc.Cancel(ctx, priya.ID, result.Request.ID)
	require.ErrorIs(t, err, ErrFollowRequestNotFound)

	require.NoError(t, svc.Cancel(ctx, alice.ID, result.Request.ID))

	requests, err := svc.ListRequests(ctx, priya.ID)
	require.NoError(t, err)
	require.Empty(t, requests)
}

func TestUnfollowRemovesEdge(t *testing.T) {
	svc, _, db := newFollowFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))

	var count int64
	require.NoError(t, db.Table("user_followers").
		Where("user_id = ?", bob.ID).
		Count(&count).Error)
	require.EqualValues(t, 0, count)
}
