package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/hash"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
	libotp "github.com/shandysiswandi/libris/internal/pkg/otp"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
)

// shippedConfig is the repository's own config so the usecase runs with the
// defaults an operator gets out of the box.
const shippedConfig = "../../../config/config.yaml"

const testPassword = "CorrectHorse#42x"

type fakeRepo struct {
	mu     sync.Mutex
	users  map[int64]*entity.UserCredential
	otps   []entity.OTP
	tokens map[string]*fakeToken

	errGetUser error
	errCreate  error
	deleted    time.Time
}

type fakeToken struct {
	entity.RefreshToken
	revoked    bool
	replacedBy *int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*entity.UserCredential{}, tokens: map[string]*fakeToken{}}
}

func (f *fakeRepo) findByUsername(username string) *entity.UserCredential {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

func (f *fakeRepo) toUser(u *entity.UserCredential) *entity.User {
	return &entity.User{ID: u.ID, Username: u.Username, Email: u.Email, Status: u.Status}
}

func (f *fakeRepo) GetUserCredentialByUsername(_ context.Context, username string) (*entity.UserCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errGetUser != nil {
		return nil, f.errGetUser
	}
	u := f.findByUsername(username)
	if u == nil {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserCredentialByID(_ context.Context, id int64) (*entity.UserCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return f.toUser(u), nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errGetUser != nil {
		return nil, f.errGetUser
	}
	u := f.findByUsername(username)
	if u == nil {
		return nil, goerror.ErrNotFound
	}
	return f.toUser(u), nil
}

func (f *fakeRepo) GetUserRefreshToken(_ context.Context, token string) (*entity.UserRefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	u := f.users[t.UserID]
	return &entity.UserRefreshToken{
		UserID:                   u.ID,
		Username:                 u.Username,
		UserEmail:                u.Email,
		UserStatus:               u.Status,
		RefreshID:                t.ID,
		RefreshRevoked:           t.revoked,
		RefreshReplacedByTokenID: t.replacedBy,
		RefreshExpiresAt:         t.ExpiresAt,
	}, nil
}

func (f *fakeRepo) NewUser(_ context.Context, user entity.NewUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return goerror.ErrConflict
		}
	}
	f.users[user.ID] = &entity.UserCredential{
		ID: user.ID, Username: user.Username, Email: user.Email, Password: user.Password, Status: user.Status,
	}
	return nil
}

func (f *fakeRepo) UpdateUserPassword(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeRepo) CreateOTP(_ context.Context, in entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errCreate != nil {
		return f.errCreate
	}
	f.otps = append(f.otps, in)
	return nil
}

func (f *fakeRepo) ConsumeOTP(_ context.Context, in entity.ConsumeOTP) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := make([]int, 0, len(f.otps))
	for i, o := range f.otps {
		if o.UserID == in.UserID && o.CodeHash == in.CodeHash && !o.Used && o.ExpiresAt.After(in.Now) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return 0, goerror.ErrNotFound
	}
	sort.Slice(idx, func(a, b int) bool { return f.otps[idx[a]].CreatedAt.After(f.otps[idx[b]].CreatedAt) })

	o := &f.otps[idx[0]]
	o.Used = true
	now := in.Now
	o.UsedAt = &now
	return o.ID, nil
}

func (f *fakeRepo) DeleteExpiredOTP(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = before
	kept := f.otps[:0]
	var n int64
	for _, o := range f.otps {
		if o.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, o)
	}
	f.otps = kept
	return n, nil
}

func (f *fakeRepo) CreateRefreshToken(_ context.Context, in entity.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[in.Token] = &fakeToken{RefreshToken: in}
	return nil
}

func (f *fakeRepo) RotateRefreshToken(_ context.Context, ro entity.RotateRefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == ro.OldID && !t.revoked {
			t.revoked = true
			id := ro.NewID
			t.replacedBy = &id
			f.tokens[ro.NewToken] = &fakeToken{RefreshToken: entity.RefreshToken{ID: ro.NewID, UserID: ro.UserID, Token: ro.NewToken, ExpiresAt: ro.NewExpiresAt}}
			return nil
		}
	}
	return goerror.ErrNotFound
}

func (f *fakeRepo) RevokeRefreshToken(_ context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || t.UserID != userID || t.revoked {
		return goerror.ErrNotFound
	}
	t.revoked = true
	return nil
}

func (f *fakeRepo) RevokeAllRefreshToken(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.revoked = true
		}
	}
	return nil
}

func (f *fakeRepo) unusedOTPs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.otps {
		if !o.Used {
			n++
		}
	}
	return n
}

type fakeMail struct {
	mu        sync.Mutex
	sent      []mail.Message
	attempted []mail.Message
	err       error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempted = append(f.attempted, msg)
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// lastCode pulls the code out of the newest email body, delivered or not.
func (f *fakeMail) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.attempted)
	body := f.attempted[len(f.attempted)-1].TextBody
	const prefix = "Your OTP code is "
	i := strings.Index(body, prefix)
	require.GreaterOrEqual(t, i, 0)
	return body[i+len(prefix) : i+len(prefix)+6]
}

// fakeLimiter applies the policy the way the Redis script does, with no
// time passing between calls: any cooldown refuses the next request.
type fakeLimiter struct {
	allow  bool
	err    error
	calls  []int64
	policy entity.ResendPolicy
	counts map[int64]int
}

func (f *fakeLimiter) AllowOTPResend(_ context.Context, userID int64, policy entity.ResendPolicy) (bool, error) {
	f.calls = append(f.calls, userID)
	f.policy = policy
	if f.err != nil || !f.allow {
		return f.allow, f.err
	}
	if f.counts == nil {
		f.counts = map[int64]int{}
	}
	if policy.Cooldown > 0 && f.counts[userID] > 0 {
		return false, nil
	}
	f.counts[userID]++
	if policy.MaxPerWindow > 0 && f.counts[userID] > policy.MaxPerWindow {
		return false, nil
	}
	return true, nil
}

type fakeMessaging struct {
	events []UserRegistrationEvent
	err    error
}

func (f *fakeMessaging) PublishUserRegistration(_ context.Context, msg UserRegistrationEvent) error {
	f.events = append(f.events, msg)
	return f.err
}

type fakeEnforcer struct {
	roles map[string][]string
	perms [][]string
}

func (f *fakeEnforcer) AddRoleForUser(user string, role string, _ ...string) (bool, error) {
	if f.roles == nil {
		f.roles = map[string][]string{}
	}
	f.roles[user] = append(f.roles[user], role)
	return true, nil
}

func (f *fakeEnforcer) GetImplicitPermissionsForUser(string, ...string) ([][]string, error) {
	return f.perms, nil
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type seqToken struct {
	mu sync.Mutex
	n  int
}

func (s *seqToken) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%064x", s.n)
}

type fixture struct {
	uc        *Usecase
	repo      *fakeRepo
	mail      *fakeMail
	limiter   *fakeLimiter
	messaging *fakeMessaging
	enforcer  *fakeEnforcer
	clock     *clock.Manual
	jwt       jwt.JWT
	password  hash.Hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	raw, err := os.ReadFile(shippedConfig)
	require.NoError(t, err)
	cfg, err := config.NewViperFromBytes("yaml", raw)
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	tokens := &seqToken{}
	j, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "libris",
		Audiences: []string{"libris-api"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      tokens,
	})
	require.NoError(t, err)

	f := &fixture{
		repo:      newFakeRepo(),
		mail:      &fakeMail{},
		limiter:   &fakeLimiter{allow: true},
		messaging: &fakeMessaging{},
		enforcer:  &fakeEnforcer{},
		clock:     clk,
		jwt:       j,
		password:  hash.NewPassword("bcrypt", 4, ""),
	}

	f.uc = New(Dependency{
		RepoDB:        f.repo,
		RepoMessaging: f.messaging,
		RepoLimiter:   f.limiter,
		RepoMail:      f.mail,
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("otp-secret"),
		Password:      f.password,
		UID:           &seqID{n: 1000},
		OID:           tokens,
		OTP:           libotp.NewNumeric(otp.DigitsSix),
		Clock:         clk,
		JWT:           j,
		Instrument:    instrument.NewNoop(),
		Enforcer:      f.enforcer,
	})

	return f
}

func (f *fixture) addUser(t *testing.T, id int64, username string, status entity.UserStatus) {
	t.Helper()

	hashed, err := f.password.Hash(testPassword)
	require.NoError(t, err)
	f.repo.users[id] = &entity.UserCredential{
		ID: id, Username: username, Email: username + "@example.com", Password: string(hashed), Status: status,
	}
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected *goerror.Error, got %v", err)
	require.Equal(t, code, gerr.Code())
}
