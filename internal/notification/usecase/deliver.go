package usecase

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
)

// maxEmailAttempts bounds delivery of one email, the first try included.
const maxEmailAttempts = 3

type delivery struct {
	UserID     int64
	Email      string
	TriggerKey entity.TriggerKey
	Data       map[string]any
}

// deliver fans an event out to the in-app inbox and to email, each only when
// the trigger has an active template for that channel.
func (s *Usecase) deliver(ctx context.Context, d delivery) {
	data := s.baseTemplateData()
	for k, v := range d.Data {
		data[k] = v
	}

	s.notifyInApp(ctx, d, data)
	s.notifyEmail(ctx, d, data)
}

func (s *Usecase) notifyInApp(ctx context.Context, d delivery, data map[string]any) {
	tpl := s.getTemplate(ctx, d.TriggerKey, entity.ChannelInApp)
	if tpl == nil {
		return
	}

	title, err := renderText("title", tpl.Title, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render in-app title", "trigger_key", d.TriggerKey.String(), "error", err)
		return
	}
	body, err := renderText("body", tpl.Body, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render in-app body", "trigger_key", d.TriggerKey.String(), "error", err)
		return
	}

	n := entity.Notification{
		ID:         s.uid.Generate(),
		UserID:     d.UserID,
		TriggerKey: d.TriggerKey,
		Title:      title,
		Body:       body,
		Data:       d.Data,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repoDB.CreateNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to repo create notification", "user_id", d.UserID, "trigger_key", d.TriggerKey.String(), "error", err)
		return
	}

	s.publishNotification(streamEvent(n))
}

func (s *Usecase) notifyEmail(ctx context.Context, d delivery, data map[string]any) {
	tpl := s.getTemplate(ctx, d.TriggerKey, entity.ChannelEmail)
	if tpl == nil {
		return
	}

	subject, err := renderText("subject", tpl.Title, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email subject", "trigger_key", d.TriggerKey.String(), "error", err)
		return
	}
	body, err := renderHTML("body", tpl.Body, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "trigger_key", d.TriggerKey.String(), "error", err)
		return
	}

	now := s.clock.Now()
	dl := entity.DeliveryLog{
		ID:         s.uid.Generate(),
		UserID:     d.UserID,
		TriggerKey: d.TriggerKey,
		Channel:    entity.ChannelEmail,
		Recipient:  d.Email,
		Status:     entity.DeliveryStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repoDB.CreateDeliveryLog(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "user_id", d.UserID, "trigger_key", d.TriggerKey.String(), "error", err)
		return
	}

	msg := mail.Message{To: []string{d.Email}, Subject: subject, HTMLBody: body}

	attempts := 0
	b := retry.WithMaxRetries(maxEmailAttempts-1, retry.NewExponential(s.retryBase))
	sendErr := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		if err := s.repoMail.Send(ctx, msg); err != nil {
			slog.WarnContext(ctx, "email attempt failed", "log_id", dl.ID, "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})

	up := entity.UpdateDeliveryLog{ID: dl.ID, Attempts: attempts, UpdatedAt: s.clock.Now()}
	if sendErr == nil {
		sentAt := up.UpdatedAt
		up.Status = entity.DeliveryStatusSent
		up.SentAt = &sentAt
	} else {
		up.Status = entity.DeliveryStatusFailed
		up.LastError = sendErr.Error()
		slog.ErrorContext(ctx, "failed to send notification email", "log_id", dl.ID, "user_id", d.UserID, "trigger_key", d.TriggerKey.String(), "attempts", attempts, "error", sendErr)
	}

	if err := s.repoDB.UpdateDeliveryLog(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log", "log_id", dl.ID, "status", up.Status.String(), "error", err)
	}
}
