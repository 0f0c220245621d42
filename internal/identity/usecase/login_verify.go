package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type LoginVerifyInput struct {
	Username string `validate:"required"`
	Code     string
}

type LoginVerifyOutput struct {
	AccessToken  string
	RefreshToken string
}

// LoginVerify consumes a one-time code and issues a token pair. Every failure,
// unknown user included, returns the same error.
func (s *Usecase) LoginVerify(ctx context.Context, in LoginVerifyInput) (*LoginVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginVerify")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if !s.otp.Valid(in.Code) {
		slog.WarnContext(ctx, "malformed otp code", "username", in.Username)
		return nil, errOTPInvalid
	}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "username", in.Username)
		return nil, errOTPInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	// an inactive account must not burn its pending code
	if !s.isUserActive(ctx, user.ID, user.Status) {
		return nil, errOTPInvalid
	}

	codeHash, err := s.hmac.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	otpID, err := s.repoDB.ConsumeOTP(ctx, entity.ConsumeOTP{
		UserID:   user.ID,
		CodeHash: string(codeHash),
		Now:      s.clock.Now(),
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp code not matched, used or expired", "user_id", user.ID)
		return nil, errOTPInvalid
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume otp", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "otp code consumed", "user_id", user.ID, "otp_id", otpID)

	acToken, refToken, err := s.issueTokens(ctx, user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginVerifyOutput{AccessToken: acToken, RefreshToken: refToken}, nil
}

func (s *Usecase) issueTokens(ctx context.Context, userID int64, username, email string) (string, string, error) {
	acToken, err := s.jwt.Generate(userID, username, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", userID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	refToken := s.oid.Generate()
	refTokenHash, err := s.hmac.Hash(refToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "user_id", userID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	if err := s.repoDB.CreateRefreshToken(ctx, entity.RefreshToken{
		ID:        s.uid.Generate(),
		UserID:    userID,
		Token:     string(refTokenHash),
		ExpiresAt: s.clock.Now().Add(s.cfg.GetDay("modules.identity.refresh_token_ttl_days")),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create refresh token user", "user_id", userID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	return acToken, refToken, nil
}
