package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

func (f *fixture) seedInbox() {
	at := f.clock.Now()
	f.repo.notifications[1] = entity.Notification{ID: 1, UserID: memberID, Title: "a", CreatedAt: at}
	f.repo.notifications[2] = entity.Notification{ID: 2, UserID: memberID, Title: "b", CreatedAt: at, ReadAt: &at}
	f.repo.notifications[3] = entity.Notification{ID: 3, UserID: memberID, Title: "c", CreatedAt: at}
	f.repo.notifications[4] = entity.Notification{ID: 4, UserID: strangerID, Title: "d", CreatedAt: at}
}

func TestUsecase_ListInbox(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedInbox()

		// Act
		items, err := f.uc.ListInbox(as(memberID), ListInboxInput{})

		// Assert
		require.NoError(t, err)
		assert.Len(t, items, 3)
		assert.Equal(t, entity.InboxFilter{UserID: memberID, Status: entity.InboxStatusAll, Limit: 20}, f.repo.lastFilter)
	})

	t.Run("Unread", func(t *testing.T) {
		f := newFixture(t)
		f.seedInbox()

		items, err := f.uc.ListInbox(as(memberID), ListInboxInput{Status: "unread", Limit: 5, Offset: 0})

		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		tests := []struct {
			name string
			in   ListInboxInput
		}{
			{name: "status", in: ListInboxInput{Status: "archived"}},
			{name: "limit", in: ListInboxInput{Limit: 101}},
			{name: "offset", in: ListInboxInput{Offset: -1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)

				_, err := f.uc.ListInbox(as(memberID), tt.in)

				requireCode(t, err, goerror.CodeInvalidInput)
			})
		}
	})

	t.Run("Anonymous", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ListInbox(context.Background(), ListInboxInput{})

		requireCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("NoRole", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ListInbox(as(strangerID), ListInboxInput{})

		requireCode(t, err, goerror.CodeForbidden)
	})
}

func TestUsecase_UnreadCount(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.seedInbox()

	// Act
	n, err := f.uc.UnreadCount(as(memberID))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUsecase_MarkInboxRead(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedInbox()

		// Act
		err := f.uc.MarkInboxRead(as(memberID), MarkInboxReadInput{ID: 1})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, f.repo.notifications[1].ReadAt)
		assert.Equal(t, f.clock.Now(), *f.repo.notifications[1].ReadAt)
	})

	t.Run("AlreadyRead", func(t *testing.T) {
		f := newFixture(t)
		f.seedInbox()

		require.NoError(t, f.uc.MarkInboxRead(as(memberID), MarkInboxReadInput{ID: 2}))
	})

	t.Run("OtherUsersNotification", func(t *testing.T) {
		f := newFixture(t)
		f.seedInbox()

		err := f.uc.MarkInboxRead(as(memberID), MarkInboxReadInput{ID: 4})

		requireCode(t, err, goerror.CodeNotFound)
		assert.Nil(t, f.repo.notifications[4].ReadAt)
	})

	t.Run("MissingID", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.MarkInboxRead(as(memberID), MarkInboxReadInput{})

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestUsecase_MarkAllInboxRead(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.seedInbox()

	// Act
	n, err := f.uc.MarkAllInboxRead(as(memberID))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Nil(t, f.repo.notifications[4].ReadAt)

	count, err := f.uc.UnreadCount(as(memberID))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUsecase_DeleteInbox(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.seedInbox()

		// Act
		err := f.uc.DeleteInbox(as(memberID), DeleteInboxInput{ID: 1})

		// Assert
		require.NoError(t, err)
		items, err := f.uc.ListInbox(as(memberID), ListInboxInput{})
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Twice", func(t *testing.T) {
		f := newFixture(t)
		f.seedInbox()
		require.NoError(t, f.uc.DeleteInbox(as(memberID), DeleteInboxInput{ID: 1}))

		err := f.uc.DeleteInbox(as(memberID), DeleteInboxInput{ID: 1})

		requireCode(t, err, goerror.CodeNotFound)
	})

	t.Run("OtherUsersNotification", func(t *testing.T) {
		f := newFixture(t)
		f.seedInbox()

		err := f.uc.DeleteInbox(as(memberID), DeleteInboxInput{ID: 4})

		requireCode(t, err, goerror.CodeNotFound)
	})
}
