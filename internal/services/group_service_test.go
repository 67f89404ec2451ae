package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
)

func newGroupFixture(t *testing.T) (*GroupService, *NotificationService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewGroupService(db, nil, notifications)
	require.NoError(t, err)
	return svc, notifications, db
}

func TestGroupCreateMakesCreatorAdmin(t *testing.T) {
	svc, notifications, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")

	group, err := svc.Create(ctx, CreateGroupInput{
		Name:      "Study Group",
		CreatedBy: creator.ID,
		MemberIDs: []string{member.ID, creator.ID},
	})
	require.NoError(t, err)
	require.Len(t, group.Members, 2)

	roles := map[string]string{}
	for _, m := range group.Members {
		roles[m.UserID] = m.Role
	}
	require.Equal(t, models.GroupRoleAdmin, roles[creator.ID])
	require.Equal(t, models.GroupRoleMember, roles[member.ID])

	// Added members hear about it, the creator does not.
	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: member.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	items, _, err = notifications.ListForUser(ctx, ListNotificationsInput{UserID: creator.ID, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestGroupGetMembersOnly(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "eve")

	group, err := svc.Create(ctx, CreateGroupInput{Name: "Study Group", CreatedBy: creator.ID})
	require.NoError(t, err)

	_, err = svc.Get(ctx, outsider.ID, group.ID)
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestGroupAddMemberAdminOnlyAndUnique(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")
	extra := createTestUser(t, db, "carol")

	group, err := svc.Create(ctx, CreateGroupInput{
		Name:      "Study Group",
		CreatedBy: creator.ID,
		MemberIDs: []string{member.ID},
	})
	require.NoError(t, err)

	err = svc.AddMember(ctx, member.ID, group.ID, extra.ID)
	require.ErrorIs(t, err, ErrNotGroupAdmin)

	require.NoError(t, svc.AddMember(ctx, creator.ID, group.ID, extra.ID))
	err = svc.AddMember(ctx, creator.ID, group.ID, extra.ID)
	require.ErrorIs(t, err, ErrAlreadyGroupMember)
}

func TestGroupRemoveMember(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")

	group, err := svc.Create(ctx, CreateGroupInput{
		Name:      "Study Group",
		CreatedBy: creator.ID,
		MemberIDs: []string{member.ID},
	})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, member.ID, group.ID, creator.ID)
	require.ErrorIs(t, err, ErrNotGroupAdmin)

	require.NoError(t, svc.RemoveMember(ctx, creator.ID, group.ID, member.ID))
	err = svc.RemoveMember(ctx, creator.ID, group.ID, member.ID)
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestGroupLeavePromotesWhenLastAdminLeaves(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")

	group, err := svc.Create(ctx, CreateGroupInput{
		Name:      "Study Group",
		CreatedBy: creator.ID,
		MemberIDs: []string{member.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, creator.ID, group.ID))

	var admins []models.GroupMember
	require.NoError(t, db.
		Where("group_id = ? AND role = ?", group.ID, models.GroupRoleAdmin).
		Find(&admins).Error)
	require.Len(t, admins, 1)
	require.Equal(t, member.ID, admins[0].UserID)
}

func TestGroupLeaveDeletesEmptyGroup(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	group, err := svc.Create(ctx, CreateGroupInput{Name: "Solo", CreatedBy: creator.ID})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, SendGroupMessageInput{
		GroupID: group.ID,
		UserID:  creator.ID,
		Content: "hello?",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, creator.ID, group.ID))

	var count int64
	require.NoError(t, db.Model(&models.Group{}).Where("id = ?", group.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&models.GroupMessage{}).Where("group_id = ?", group.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestGroupLeaveByNonMember(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "eve")
	group, err := svc.Create(ctx, CreateGroupInput{Name: "Study Group", CreatedBy: creator.ID})
	require.NoError(t, err)

	err = svc.Leave(ctx, outsider.ID, group.ID)
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestGroupMessagesMembersOnly(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")
	outsider := createTestUser(t, db, "eve")

	group, err := svc.Create(ctx, CreateGroupInput{
		Name:      "Study Group",
		CreatedBy: creator.ID,
		MemberIDs: []string{member.ID},
	})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, SendGroupMessageInput{GroupID: group.ID, UserID: outsider.ID, Content: "hi"})
	require.ErrorIs(t, err, ErrNotGroupMember)

	first, err := svc.SendMessage(ctx, SendGroupMessageInput{GroupID: group.ID, UserID: creator.ID, Content: "welcome"})
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, SendGroupMessageInput{GroupID: group.ID, UserID: member.ID, Content: "thanks"})
	require.NoError(t, err)

	messages, err := svc.ListMessages(ctx, member.ID, group.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, first.ID, messages[0].ID)
	require.Equal(t, second.ID, messages[1].ID)

	_, err = svc.ListMessages(ctx, outsider.ID, group.ID, 0, 0)
	require.ErrorIs(t, err, ErrNotGroupMember)
}

func TestGroupDeleteMessageOwnOnly(t *testing.T) {
	svc, _, db := newGroupFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")

	group, err := svc.Create(ctx, CreateGroupInput{
		Name:      "Study Group",
		CreatedBy: creator.ID,
		MemberIDs: []string{member.ID},
	})
	require.NoError(t, err)

	message, err := svc.SendMessage(ctx, SendGroupMessageInput{GroupID: group.ID, UserID: member.ID, Content: "oops"})
	require.NoError(t, err)

	err = svc.DeleteMessage(ctx, creator.ID, message.ID)
	require.Error(t, err)

	require.NoError(t, svc.DeleteMessage(ctx, member.ID, message.ID))
	err = svc.DeleteMessage(ctx, member.ID, message.ID)
	require.ErrorIs(t, err, ErrGroupMessageNotFound)
}
