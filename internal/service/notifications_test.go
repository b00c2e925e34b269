package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stagebook/internal/model"
)

func TestNotificationLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	me := f.principalA

	for _, title := range []string{"first", "second", "third"} {
		_, err := f.notes.Create(ctx, NotificationInput{UserID: me.UserID, Type: model.NotifyBookingRequested, Title: title})
		require.NoError(t, err)
	}
	_, err := f.notes.Create(ctx, NotificationInput{UserID: f.principalB.UserID, Type: model.NotifyBookingRequested, Title: "theirs"})
	require.NoError(t, err)

	unread, err := f.notes.ListUnread(ctx, me)
	require.NoError(t, err)
	require.Len(t, unread, 3)
	assert.Equal(t, "third", unread[0].Title, "newest first")

	theirs := f.notificationsFor(f.principalB.UserID)[0]
	require.NoError(t, f.notes.MarkRead(ctx, me, theirs.ID), "foreign ids are ignored")
	assert.False(t, f.store.notifications[theirs.ID].IsRead)

	require.NoError(t, f.notes.MarkRead(ctx, me, unread[0].ID))
	assert.True(t, f.store.notifications[unread[0].ID].IsRead)
	require.NotNil(t, f.store.notifications[unread[0].ID].ReadAt)
	require.NoError(t, f.notes.MarkRead(ctx, me, 424242))

	n, err := f.notes.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread, err = f.notes.ListUnread(ctx, me)
	require.NoError(t, err)
	assert.NotNil(t, unread)
	assert.Empty(t, unread)
}

func TestNotifySkipsMissingRecipient(t *testing.T) {
	f := newFixture()
	f.notes.Notify(context.Background(), NotificationInput{Type: model.NotifyEventApproved, Title: "nobody"})
	assert.Empty(t, f.store.notifications)
}
