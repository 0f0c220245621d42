package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	objInbox = "notification.inbox"
	actRead  = "read"
)

var (
	errAuthRequired = goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	errForbidden    = goerror.NewBusiness("you do not have permission to perform this action", goerror.CodeForbidden)
	errNotFound     = goerror.NewBusiness("notification not found", goerror.CodeNotFound)
)

type repoDB interface {
	GetTemplate(ctx context.Context, tk entity.TriggerKey, ch entity.Channel) (*entity.Template, error)
	CreateNotification(ctx context.Context, n entity.Notification) error
	CreateDeliveryLog(ctx context.Context, dl entity.DeliveryLog) error
	UpdateDeliveryLog(ctx context.Context, u entity.UpdateDeliveryLog) error

	ListNotifications(ctx context.Context, f entity.InboxFilter) ([]entity.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID int64) (int64, error)
	MarkNotificationRead(ctx context.Context, userID, id int64, at time.Time) (bool, error)
	MarkNotificationsReadAll(ctx context.Context, userID int64, at time.Time) (int64, error)
	SoftDeleteNotification(ctx context.Context, userID, id int64, at time.Time) (bool, error)
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB    repoDB
	repoMail  repoMail
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
	enforcer  enforcer
	retryBase time.Duration

	streamMu sync.RWMutex
	streams  map[int64]map[*subscriber]struct{}
}

type Dependency struct {
	RepoDB     repoDB
	RepoMail   repoMail
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
	Enforcer   enforcer
	// RetryBase is the first backoff between email attempts.
	RetryBase time.Duration
}

func New(dep Dependency) *Usecase {
	if dep.RetryBase <= 0 {
		dep.RetryBase = time.Second
	}

	return &Usecase{
		repoDB:    dep.RepoDB,
		repoMail:  dep.RepoMail,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		enforcer:  dep.Enforcer,
		retryBase: dep.RetryBase,
		streams:   make(map[int64]map[*subscriber]struct{}),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) authorize(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, errAuthRequired
	}

	ok, err := s.enforcer.Enforce(strconv.FormatInt(clm.UserID, 10), objInbox, actRead)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enforce policy", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, errForbidden
	}

	return clm, nil
}

// getTemplate returns nil when the trigger has no active template for ch.
func (s *Usecase) getTemplate(ctx context.Context, tk entity.TriggerKey, ch entity.Channel) *entity.Template {
	tpl, err := s.repoDB.GetTemplate(ctx, tk, ch)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.DebugContext(ctx, "notification template not found", "trigger_key", tk.String(), "channel", ch.String())
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get template", "trigger_key", tk.String(), "channel", ch.String(), "error", err)
		return nil
	}

	return tpl
}
