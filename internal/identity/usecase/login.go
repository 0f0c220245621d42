package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type LoginInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	OTPSent          bool
	ExpiresInSeconds int64
}

// Login verifies the credentials and emails a one-time code. Tokens are only
// issued by LoginVerify.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.verifyCredential(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	ttl, err := s.issueOTP(ctx, user.ID, user.Email, entity.OTPPurposeLogin)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{OTPSent: true, ExpiresInSeconds: int64(ttl.Seconds())}, nil
}

// verifyCredential never tells the caller which check failed.
func (s *Usecase) verifyCredential(ctx context.Context, username, password string) (*entity.UserCredential, error) {
	user, err := s.repoDB.GetUserCredentialByUsername(ctx, username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", username)
		return nil, errInvalidCredentials
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.password.Verify(user.Password, password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, errInvalidCredentials
	}

	if !s.isUserActive(ctx, user.ID, user.Status) {
		return nil, errInvalidCredentials
	}

	return user, nil
}
