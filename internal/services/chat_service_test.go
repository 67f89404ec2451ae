package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
)

func newChatFixture(t *testing.T) (*ChatService, *NotificationService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewChatService(db, nil, notifications)
	require.NoError(t, err)
	return svc, notifications, db
}

func TestGetOrCreateRoomReusesExistingPair(t *testing.T) {
	svc, _, db := newChatFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	room, err := svc.GetOrCreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, room.Members, 2)

	// The same pair in either order resolves to the same room.
	again, err := svc.GetOrCreateRoom(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, room.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.ChatRoom{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetOrCreateRoomValidation(t *testing.T) {
	svc, _, db := newChatFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	_, err := svc.GetOrCreateRoom(ctx, alice.ID, alice.ID)
	require.Error(t, err)

	_, err = svc.GetOrCreateRoom(ctx, alice.ID, "missing-user")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendMessageBumpsRoomAndNotifiesOtherMember(t *testing.T) {
	svc, notifications, db := newChatFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	room, err := svc.GetOrCreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	var before models.ChatRoom
	require.NoError(t, db.First(&before, "id = ?", room.ID).Error)
	time.Sleep(10 * time.Millisecond)

	message, err := svc.SendMessage(ctx, SendMessageInput{
		RoomID: room.ID,
		UserID: alice.ID,
		Text:   "lunch?",
	})
	require.NoError(t, err)
	require.Equal(t, "lunch?", message.Text)
	require.NotNil(t, message.User)

	var after models.ChatRoom
	require.NoError(t, db.First(&after, "id = ?", room.ID).Error)
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))

	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: bob.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationMessage, items[0].Type)

	// The sender gets no notification for their own message.
	items, _, err = notifications.ListForUser(ctx, ListNotificationsInput{UserID: alice.ID, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestSendMessageRequiresContentAndMembership(t *testing.T) {
	svc, _, db := newChatFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	eve := createTestUser(t, db, "eve")
	room, err := svc.GetOrCreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, UserID: alice.ID})
	require.Error(t, err)

	_, err = svc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, UserID: eve.ID, Text: "hi"})
	require.ErrorIs(t, err, ErrNotRoomMember)
}

func TestListMessagesMemberOnlyOldestFirst(t *testing.T) {
	svc, _, db := newChatFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	eve := createTestUser(t, db, "eve")
	room, err := svc.GetOrCreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	first, err := svc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, UserID: alice.ID, Text: "one"})
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, UserID: bob.ID, Text: "two"})
	require.NoError(t, err)

	messages, err := svc.ListMessages(ctx, alice.ID, room.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, first.ID, messages[0].ID)
	require.Equal(t, second.ID, messages[1].ID)

	_, err = svc.ListMessages(ctx, eve.ID, room.ID, 0, 0)
	require.ErrorIs(t, err, ErrNotRoomMember)
}

func TestDeleteMessageOwnOnly(t *testing.T) {
	svc, _, db := newChatFixture(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	room, err := svc.GetOrCreateRoom(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	message, err := svc.SendMessage(ctx, SendMessageInput{RoomID: room.ID, UserID: alice.ID, Text: "oops"})
	require.NoError(t, err)

	err = svc.DeleteMessage(ctx, bob.ID, message.ID)
	require.Error(t, err)

	require.NoError(t, svc.DeleteMessage(ctx, alice.ID, message.ID))
	err = svc.DeleteMessage(ctx, alice.ID, message.ID)
	require.ErrorIs(t, err, ErrMessageNotFound)
}
