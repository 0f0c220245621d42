package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type OTPResendInput struct {
	Username string `validate:"required"`
}

type OTPResendOutput struct {
	ExpiresInSeconds int64
}

// OTPResend emails a new code without asking for the password again. An
// unknown or inactive username gets the same response as a real send.
func (s *Usecase) OTPResend(ctx context.Context, in OTPResendInput) (*OTPResendOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPResend")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out := &OTPResendOutput{ExpiresInSeconds: int64(s.otpTTL().Seconds())}

	user, err := s.repoDB.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp resend for unknown user", "username", in.Username)
		return out, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by username", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.isUserActive(ctx, user.ID, user.Status) {
		return out, nil
	}

	allowed, err := s.repoLimiter.AllowOTPResend(ctx, user.ID, s.resendPolicy())
	if err != nil {
		slog.ErrorContext(ctx, "failed to check otp resend limit", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !allowed {
		slog.WarnContext(ctx, "otp resend rate limited", "user_id", user.ID)
		return nil, goerror.NewBusiness("too many otp requests, try again later", goerror.CodeTooManyRequest)
	}

	ttl, err := s.issueOTP(ctx, user.ID, user.Email, entity.OTPPurposeResend)
	if err != nil {
		return nil, err
	}

	out.ExpiresInSeconds = int64(ttl.Seconds())
	return out, nil
}

func (s *Usecase) resendPolicy() entity.ResendPolicy {
	return entity.ResendPolicy{
		Cooldown:     s.cfg.GetSecond("modules.identity.otp_resend.cooldown_seconds"),
		MaxPerWindow: s.cfg.GetInt("modules.identity.otp_resend.max_per_window"),
		Window:       s.cfg.GetMinute("modules.identity.otp_resend.window_minutes"),
	}
}
