package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
)

func newCommunityFixture(t *testing.T) (*CommunityService, *NotificationService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommunityService(db, notifications)
	require.NoError(t, err)
	return svc, notifications, db
}

func createPrivateCommunity(t *testing.T, svc *CommunityService, creatorID, name string) *models.Community {
	t.Helper()

	private := true
	community, err := svc.Create(context.Background(), creatorID, CommunityInput{
		Name:        name,
		Description: "members only",
		IsPrivate:   &private,
	})
	require.NoError(t, err)
	return community
}

func TestCommunityCreateMakesCreatorMemberAndAdmin(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	community, err := svc.Create(ctx, creator.ID, CommunityInput{Name: "Robotics Club"})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, creator.ID, community.ID, false)
	require.NoError(t, err)
	require.Len(t, detail.Members, 1)
	require.Len(t, detail.Admins, 1)
	require.Equal(t, creator.ID, detail.Members[0].ID)
}

func TestCommunityCreateDuplicateName(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	_, err := svc.Create(ctx, creator.ID, CommunityInput{Name: "Chess"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, creator.ID, CommunityInput{Name: "Chess"})
	require.ErrorIs(t, err, ErrCommunityNameTaken)
}

func TestPrivateCommunityRedactedForOutsiders(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	detail, err := svc.Get(ctx, outsider.ID, community.ID, false)
	require.NoError(t, err)
	require.Equal(t, community.ID, detail.ID)
	require.Equal(t, "Secret Society", detail.Name)
	require.True(t, detail.IsPrivate)
	require.True(t, detail.CanRequest)
	require.Equal(t, "This is a private community. Request to join to see more.", detail.Description)
	require.Empty(t, detail.Members)
	require.Empty(t, detail.Admins)
	require.Empty(t, detail.Posts)
	require.Empty(t, detail.JoinRequests)
}

func TestPrivateCommunityFullForMembersAndSiteAdmins(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	outsider := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	detail, err := svc.Get(ctx, creator.ID, community.ID, false)
	require.NoError(t, err)
	require.Equal(t, "members only", detail.Description)
	require.Len(t, detail.Members, 1)

	// Site admins bypass the redaction without being members.
	detail, err = svc.Get(ctx, outsider.ID, community.ID, true)
	require.NoError(t, err)
	require.Len(t, detail.Members, 1)
}

func TestPrivateCommunityFullForPendingRequester(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	requester := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	_, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)

	detail, err := svc.Get(ctx, requester.ID, community.ID, false)
	require.NoError(t, err)
	require.Equal(t, "members only", detail.Description)
	require.False(t, detail.CanRequest)
}

func TestRequestJoinRejectsMembersAndDuplicates(t *testing.T) {
	svc, notifications, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	requester := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	_, err := svc.RequestJoin(ctx, creator.ID, community.ID)
	require.ErrorIs(t, err, ErrAlreadyMember)

	request, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestPending, request.Status)

	_, err = svc.RequestJoin(ctx, requester.ID, community.ID)
	require.ErrorIs(t, err, ErrJoinRequestExists)

	// Community admins are notified about the new request.
	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: creator.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationCommunityRequest, items[0].Type)
}

func TestApproveRequestAddsMemberTransactionally(t *testing.T) {
	svc, notifications, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	requester := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	_, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ApproveRequest(ctx, creator.ID, community.ID, requester.ID))

	var membership int64
	require.NoError(t, db.Table("community_members").
		Where("community_id = ? AND user_id = ?", community.ID, requester.ID).
		Count(&membership).Error)
	require.EqualValues(t, 1, membership)

	var request models.CommunityJoinRequest
	require.NoError(t, db.First(&request, "community_id = ? AND user_id = ?", community.ID, requester.ID).Error)
	require.Equal(t, models.JoinRequestApproved, request.Status)

	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: requester.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// A second approval finds no pending row.
	err = svc.ApproveRequest(ctx, creator.ID, community.ID, requester.ID)
	require.ErrorIs(t, err, ErrJoinRequestNotFound)
}

func TestApproveRequestRequiresCommunityAdmin(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	requester := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	_, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)

	err = svc.ApproveRequest(ctx, requester.ID, community.ID, requester.ID)
	require.ErrorIs(t, err, ErrNotCommunityAdmin)
}

func TestRejectRequestLeavesMembershipUntouched(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	requester := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	_, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RejectRequest(ctx, creator.ID, community.ID, requester.ID))

	var membership int64
	require.NoError(t, db.Table("community_members").
		Where("community_id = ? AND user_id = ?", community.ID, requester.ID).
		Count(&membership).Error)
	require.EqualValues(t, 0, membership)

	// A rejected row does not block a fresh request.
	request, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)
	require.Equal(t, models.JoinRequestPending, request.Status)
}

func TestCancelJoinRequest(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	requester := createTestUser(t, db, "bob")
	community := createPrivateCommunity(t, svc, creator.ID, "Secret Society")

	_, err := svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)
	require.NoError(t, svc.CancelRequest(ctx, requester.ID, community.ID))

	err = svc.CancelRequest(ctx, requester.ID, community.ID)
	require.ErrorIs(t, err, ErrJoinRequestNotFound)

	// Cancelling clears the way for a new request.
	_, err = svc.RequestJoin(ctx, requester.ID, community.ID)
	require.NoError(t, err)
}

func TestCommunityListReportsMemberCounts(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	member := createTestUser(t, db, "bob")
	community, err := svc.Create(ctx, creator.ID, CommunityInput{Name: "Chess"})
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, creator.ID, community.ID, member.ID))

	summaries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.EqualValues(t, 2, summaries[0].MemberCount)
}

func TestCommunityUpdateAndDeleteRequireAdmin(t *testing.T) {
	svc, _, db := newCommunityFixture(t)
	ctx := context.Background()

	creator := createTestUser(t, db, "alice")
	stranger := createTestUser(t, db, "bob")
	community, err := svc.Create(ctx, creator.ID, CommunityInput{Name: "Chess"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger.ID, community.ID, CommunityInput{Name: "Chess Redux"})
	require.ErrorIs(t, err, ErrNotCommunityAdmin)

	err = svc.Delete(ctx, stranger.ID, community.ID)
	require.ErrorIs(t, err, ErrNotCommunityAdmin)

	updated, err := svc.Update(ctx, creator.ID, community.ID, CommunityInput{Name: "Chess Redux"})
	require.NoError(t, err)
	require.Equal(t, "Chess Redux", updated.Name)

	require.NoError(t, svc.Delete(ctx, creator.ID, community.ID))
	_, err = svc.Get(ctx, creator.ID, community.ID, false)
	require.ErrorIs(t, err, ErrCommunityNotFound)
}
