package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
	"github.com/shandysiswandi/libris/internal/pkg/pgxcasbin"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
)

const (
	memberID   int64 = 100
	strangerID int64 = 300
)

type fakeRepo struct {
	mu            sync.Mutex
	templates     map[entity.TriggerKey]map[entity.Channel]entity.Template
	notifications map[int64]entity.Notification
	deleted       map[int64]bool
	logs          map[int64]entity.DeliveryLog
	updates       []entity.UpdateDeliveryLog
	lastFilter    entity.InboxFilter
	createErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		templates:     map[entity.TriggerKey]map[entity.Channel]entity.Template{},
		notifications: map[int64]entity.Notification{},
		deleted:       map[int64]bool{},
		logs:          map[int64]entity.DeliveryLog{},
	}
}

func (r *fakeRepo) addTemplate(tk entity.TriggerKey, ch entity.Channel, title, body string) {
	if r.templates[tk] == nil {
		r.templates[tk] = map[entity.Channel]entity.Template{}
	}
	r.templates[tk][ch] = entity.Template{TriggerKey: tk, Channel: ch, Title: title, Body: body}
}

func (r *fakeRepo) GetTemplate(_ context.Context, tk entity.TriggerKey, ch entity.Channel) (*entity.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tpl, ok := r.templates[tk][ch]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &tpl, nil
}

func (r *fakeRepo) CreateNotification(_ context.Context, n entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeRepo) CreateDeliveryLog(_ context.Context, dl entity.DeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs[dl.ID] = dl
	return nil
}

func (r *fakeRepo) UpdateDeliveryLog(_ context.Context, u entity.UpdateDeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dl, ok := r.logs[u.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	dl.Status = u.Status
	dl.Attempts = u.Attempts
	dl.LastError = u.LastError
	dl.SentAt = u.SentAt
	dl.UpdatedAt = u.UpdatedAt
	r.logs[u.ID] = dl
	r.updates = append(r.updates, u)
	return nil
}

func (r *fakeRepo) visible(userID int64) []entity.Notification {
	var out []entity.Notification
	for id, n := range r.notifications {
		if n.UserID == userID && !r.deleted[id] {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeRepo) ListNotifications(_ context.Context, f entity.InboxFilter) ([]entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFilter = f
	var out []entity.Notification
	for _, n := range r.visible(f.UserID) {
		switch f.Status {
		case entity.InboxStatusUnread:
			if n.ReadAt != nil {
				continue
			}
		case entity.InboxStatusRead:
			if n.ReadAt == nil {
				continue
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeRepo) CountUnreadNotifications(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, item := range r.visible(userID) {
		if item.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) MarkNotificationRead(_ context.Context, userID, id int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID || r.deleted[id] {
		return false, nil
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
		r.notifications[id] = n
	}
	return true, nil
}

func (r *fakeRepo) MarkNotificationsReadAll(_ context.Context, userID int64, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for _, n := range r.visible(userID) {
		if n.ReadAt == nil {
			n.ReadAt = &at
			r.notifications[n.ID] = n
			changed++
		}
	}
	return changed, nil
}

func (r *fakeRepo) SoftDeleteNotification(_ context.Context, userID, id int64, _ time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok || n.UserID != userID || r.deleted[id] {
		return false, nil
	}
	r.deleted[id] = true
	return true, nil
}

// flakyMail rejects the first `failures` sends.
type flakyMail struct {
	mu       sync.Mutex
	failures int
	sent     []mail.Message
	attempts int
}

func (m *flakyMail) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.attempts <= m.failures {
		return errors.New("421 relay busy")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return 5000 + s.n
}

func newEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	m, err := model.NewModelFromString(pgxcasbin.RBACModel)
	require.NoError(t, err)
	e, err := casbin.NewEnforcer(m)
	require.NoError(t, err)

	_, err = e.AddPolicy("member", objInbox, actRead)
	require.NoError(t, err)
	_, err = e.AddGroupingPolicy(strconv.FormatInt(memberID, 10), "member")
	require.NoError(t, err)

	return e
}

type fixture struct {
	uc    *Usecase
	repo  *fakeRepo
	mail  *flakyMail
	clock *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: Libris\n  support_email: help@libris.example\n"))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		repo:  newFakeRepo(),
		mail:  &flakyMail{},
		clock: clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	f.uc = New(Dependency{
		RepoDB:     f.repo,
		RepoMail:   f.mail,
		Config:     cfg,
		UID:        &seqID{},
		Clock:      f.clock,
		Validator:  v,
		Instrument: instrument.NewNoop(),
		Enforcer:   newEnforcer(t),
		RetryBase:  time.Millisecond,
	})

	return f
}

func as(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code())
}
