package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

func TestUsecase_Register(t *testing.T) {
	valid := RegisterInput{
		Username: "alice",
		Email:    " Alice@Example.com ",
		FullName: "Alice Liddell",
		Password: testPassword,
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		out, err := f.uc.Register(context.Background(), valid)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", out.Email)

		user := f.repo.users[out.ID]
		require.NotNil(t, user)
		assert.Equal(t, entity.UserStatusActive, user.Status)
		assert.NotEqual(t, testPassword, user.Password)
		assert.True(t, f.password.Verify(user.Password, testPassword))

		assert.Equal(t, []string{RoleMember}, f.enforcer.roles[subject(out.ID)])
		require.Len(t, f.messaging.events, 1)
		assert.Equal(t, "alice", f.messaging.events[0].Username)
	})

	t.Run("Conflict", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, 1, "alice", entity.UserStatusActive)

		_, err := f.uc.Register(context.Background(), valid)

		requireCode(t, err, goerror.CodeConflict)
		assert.Empty(t, f.messaging.events)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		f := newFixture(t)
		in := valid
		in.Password = "short1!A"

		_, err := f.uc.Register(context.Background(), in)

		requireCode(t, err, goerror.CodeInvalidInput)
		assert.Empty(t, f.repo.users)
	})

	t.Run("PublishFailureIgnored", func(t *testing.T) {
		f := newFixture(t)
		f.messaging.err = errors.New("broker down")

		_, err := f.uc.Register(context.Background(), valid)

		require.NoError(t, err)
		assert.Len(t, f.repo.users, 1)
	})
}
