package identity

import (
	"context"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/libris/internal/identity/inbound"
	"github.com/shandysiswandi/libris/internal/identity/outbound/db"
	"github.com/shandysiswandi/libris/internal/identity/outbound/email"
	"github.com/shandysiswandi/libris/internal/identity/outbound/limiter"
	"github.com/shandysiswandi/libris/internal/identity/outbound/mq"
	"github.com/shandysiswandi/libris/internal/identity/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/clock"
	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goroutine"
	"github.com/shandysiswandi/libris/internal/pkg/hash"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/jwt"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
	"github.com/shandysiswandi/libris/internal/pkg/messaging"
	"github.com/shandysiswandi/libris/internal/pkg/otp"
	"github.com/shandysiswandi/libris/internal/pkg/router"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
	"github.com/shandysiswandi/libris/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Password   hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		RepoLimiter:   limiter.NewRedis(dep.CacheConn, dep.Instrument),
		RepoMail:      email.New(dep.Mail, dep.Config.GetString("mail.from"), dep.Instrument),
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Password:      dep.Password,
		UID:           dep.UID,
		OID:           dep.OID,
		OTP:           dep.OTP,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	dep.Goroutine.Every(dep.Ctx, "identity.otp_cleanup",
		dep.Config.GetMinute("modules.identity.otp_cleanup.interval_minutes"), uc.CleanupOTP)

	return nil
}
