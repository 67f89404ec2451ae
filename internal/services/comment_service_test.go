package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/universe-app/universe/internal/database/testutil"
	"github.com/universe-app/universe/internal/models"
)

func TestCommentCreateNotifiesPostAuthor(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)
	posts, err := NewPostService(db, notifications)
	require.NoError(t, err)
	svc, err := NewCommentService(db, notifications)
	require.NoError(t, err)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	commenter := createTestUser(t, db, "bob")
	post := createTestPost(t, posts, author.ID, "discuss")

	comment, err := svc.Create(ctx, commenter.ID, post.ID, "  first!  ")
	require.NoError(t, err)
	require.Equal(t, "first!", comment.Text)

	items, _, err := notifications.ListForUser(ctx, ListNotificationsInput{UserID: author.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationComment, items[0].Type)

	// Commenting on your own post stays quiet.
	_, err = svc.Create(ctx, author.ID, post.ID, "thanks")
	require.NoError(t, err)
	items, _, err = notifications.ListForUser(ctx, ListNotificationsInput{UserID: author.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCommentCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	posts, err := NewPostService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	post := createTestPost(t, posts, author.ID, "discuss")

	_, err = svc.Create(ctx, author.ID, post.ID, "   ")
	require.Error(t, err)

	_, err = svc.Create(ctx, author.ID, "missing-post", "hello")
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestCommentListOrderedOldestFirst(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	posts, err := NewPostService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	post := createTestPost(t, posts, author.ID, "discuss")

	first, err := svc.Create(ctx, author.ID, post.ID, "first")
	require.NoError(t, err)
	second, err := svc.Create(ctx, author.ID, post.ID, "second")
	require.NoError(t, err)

	comments, err := svc.List(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, first.ID, comments[0].ID)
	require.Equal(t, second.ID, comments[1].ID)
	require.NotNil(t, comments[0].User)
}

func TestCommentDeletePermissions(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	posts, err := NewPostService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	author := createTestUser(t, db, "alice")
	commenter := createTestUser(t, db, "bob")
	post := createTestPost(t, posts, author.ID, "discuss")

	comment, err := svc.Create(ctx, commenter.ID, post.ID, "hot take")
	require.NoError(t, err)

	err = svc.Delete(ctx, author.ID, comment.ID, false)
	require.ErrorIs(t, err, ErrNotCommentOwner)

	require.NoError(t, svc.Delete(ctx, commenter.ID, comment.ID, false))
	err = svc.Delete(ctx, commenter.ID, comment.ID, false)
	require.ErrorIs(t, err, ErrCommentNotFound)

	// Admins may remove any comment.
	comment, err = svc.Create(ctx, commenter.ID, post.ID, "another take")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "moderator", comment.ID, true))
}
