package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

func loggedIn(t *testing.T, f *fixture) *LoginVerifyOutput {
	t.Helper()

	code := loginAndCode(t, f, "alice")
	out, err := f.uc.LoginVerify(context.Background(), LoginVerifyInput{Username: "alice", Code: code})
	require.NoError(t, err)
	return out
}

func TestUsecase_RefreshToken(t *testing.T) {
	t.Run("Rotate", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.addUser(t, 1, "alice", entity.UserStatusActive)
		session := loggedIn(t, f)

		// Act
		out, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken})

		// Assert
		require.NoError(t, err)
		assert.NotEqual(t, session.RefreshToken, out.RefreshToken)
		clm, err := f.jwt.Verify(out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", clm.Username)
	})

	t.Run("ReuseRevokesAll", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, 1, "alice", entity.UserStatusActive)
		session := loggedIn(t, f)
		rotated, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken})
		require.NoError(t, err)

		_, err = f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken})
		requireCode(t, err, goerror.CodeForbidden)

		_, err = f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: rotated.RefreshToken})
		assert.Same(t, errRefreshInvalid, err)
	})

	t.Run("Expired", func(t *testing.T) {
		f := newFixture(t)
		f.addUser(t, 1, "alice", entity.UserStatusActive)
		session := loggedIn(t, f)
		f.clock.Advance(8 * 24 * time.Hour)

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken})

		assert.Same(t, errRefreshInvalid, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "nope"})

		assert.Same(t, errRefreshInvalid, err)
	})
}

func TestUsecase_Logout(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "alice", entity.UserStatusActive)
	session := loggedIn(t, f)

	require.ErrorIs(t, f.uc.Logout(context.Background(), LogoutInput{RefreshToken: session.RefreshToken}), errAuthRequired)
	require.NoError(t, f.uc.Logout(authCtx(1), LogoutInput{RefreshToken: session.RefreshToken}))
	require.NoError(t, f.uc.Logout(authCtx(1), LogoutInput{RefreshToken: session.RefreshToken}))

	_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: session.RefreshToken})
	assert.Same(t, errRefreshInvalid, err)
}

func TestUsecase_LogoutAll(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, 1, "alice", entity.UserStatusActive)
	a := loggedIn(t, f)
	b := loggedIn(t, f)

	require.NoError(t, f.uc.LogoutAll(authCtx(1)))

	for _, tok := range []string{a.RefreshToken, b.RefreshToken} {
		_, err := f.uc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: tok})
		assert.Same(t, errRefreshInvalid, err)
	}
}
