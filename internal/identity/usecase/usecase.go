package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/hash"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
	"github.com/shandysiswandi/libris/internal/pkg/otp"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// RoleMember is granted to every registered user.
const RoleMember = "member"

var (
	errInvalidCredentials = goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)
	errOTPInvalid         = goerror.NewBusiness("invalid or expired otp code", goerror.CodeUnauthorized)
	errRefreshInvalid     = goerror.NewBusiness("invalid or expired refresh token", goerror.CodeUnauthorized)
	errAuthRequired       = goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
)

type UserRegistrationEvent struct {
	UserID   int64
	Username string
	Email    string
	FullName string
}

type repoMessaging interface {
	PublishUserRegistration(ctx context.Context, msg UserRegistrationEvent) error
}

type repoDB interface {
	GetUserCredentialByUsername(ctx context.Context, username string) (*entity.UserCredential, error)
	GetUserCredentialByID(ctx context.Context, id int64) (*entity.UserCredential, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	GetUserRefreshToken(ctx context.Context, token string) (*entity.UserRefreshToken, error)

	NewUser(ctx context.Context, user entity.NewUser) error
	UpdateUserPassword(ctx context.Context, userID int64, hash string) error

	CreateOTP(ctx context.Context, in entity.OTP) error
	ConsumeOTP(ctx context.Context, in entity.ConsumeOTP) (int64, error)
	DeleteExpiredOTP(ctx context.Context, before time.Time) (int64, error)

	CreateRefreshToken(ctx context.Context, in entity.RefreshToken) error
	RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) error
	RevokeRefreshToken(ctx context.Context, userID int64, token string) error
	RevokeAllRefreshToken(ctx context.Context, userID int64) error
}

type repoLimiter interface {
	AllowOTPResend(ctx context.Context, userID int64, policy entity.ResendPolicy) (bool, error)
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type enforcer interface {
	AddRoleForUser(user string, role string, domain ...string) (bool, error)
	GetImplicitPermissionsForUser(user string, domain ...string) ([][]string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoLimiter   repoLimiter
	repoMail      repoMail
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	password      hash.Hash
	uid           uid.NumberID
	oid           uid.StringID
	otp           otp.Generator
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      enforcer
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoLimiter   repoLimiter
	RepoMail      repoMail
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Password      hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	OTP           otp.Generator
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoLimiter:   dep.RepoLimiter,
		repoMail:      dep.RepoMail,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		password:      dep.Password,
		uid:           dep.UID,
		oid:           dep.OID,
		otp:           dep.OTP,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if ttl := s.cfg.GetMinute("modules.identity.otp_ttl_minutes"); ttl > 0 {
		return ttl
	}
	return 5 * time.Minute
}

// isUserActive logs the reason a non active account is refused. Callers map a
// false result onto their own generic error.
func (s *Usecase) isUserActive(ctx context.Context, userID int64, status entity.UserStatus) bool {
	if status == entity.UserStatusActive {
		return true
	}

	slog.WarnContext(ctx, "user account is not active", "user_id", userID, "status", status.String())
	return false
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, errAuthRequired
	}

	return clm, nil
}

func subject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
