package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
)

// issueOTP stores a fresh code for the user and emails it. The stored record
// is kept when the email cannot be sent; the caller only learns that delivery
// failed, never why.
func (s *Usecase) issueOTP(ctx context.Context, userID int64, email string, purpose entity.OTPPurpose) (time.Duration, error) {
	ctx, span := s.startSpan(ctx, "issueOTP")
	defer span.End()

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "user_id", userID, "error", err)
		return 0, goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "user_id", userID, "error", err)
		return 0, goerror.NewServer(err)
	}

	ttl := s.otpTTL()
	now := s.clock.Now()
	if err := s.repoDB.CreateOTP(ctx, entity.OTP{
		ID:        s.uid.Generate(),
		UserID:    userID,
		CodeHash:  string(codeHash),
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp", "user_id", userID, "error", err)
		return 0, goerror.NewServer(err)
	}

	minutes := int(ttl / time.Minute)
	if err := s.repoMail.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  purpose.Subject(),
		TextBody: fmt.Sprintf("Your OTP code is %s. It is valid for %d minutes.", code, minutes),
		HTMLBody: fmt.Sprintf("<p>Your OTP code is <b>%s</b>.</p><p>It is valid for %d minutes.</p>", code, minutes),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp email", "user_id", userID, "purpose", string(purpose), "error", err)
		return 0, goerror.NewUnavailable(err, "failed to deliver otp code, please request a new one")
	}

	return ttl, nil
}
