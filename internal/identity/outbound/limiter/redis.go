package limiter

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/libris/internal/identity/entity"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

// KEYS: cooldown, counter. ARGV: cooldown ms, window ms, max per window.
// Returns 1 when the request is allowed. A refused request does not start a
// new cooldown.
var allowScript = redis.NewScript(`
if tonumber(ARGV[1]) > 0 and redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local n = redis.call('INCR', KEYS[2])
if n == 1 and tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[2], ARGV[2])
end
if tonumber(ARGV[3]) > 0 and n > tonumber(ARGV[3]) then
	return 0
end
if tonumber(ARGV[1]) > 0 then
	redis.call('SET', KEYS[1], '1', 'PX', ARGV[1])
end
return 1
`)

type Redis struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewRedis(client *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

// AllowOTPResend applies a per user cooldown and a fixed window counter in one
// round trip.
func (r *Redis) AllowOTPResend(ctx context.Context, userID int64, policy entity.ResendPolicy) (bool, error) {
	ctx, span := r.ins.Tracer("identity.outbound.limiter").Start(ctx, "AllowOTPResend")
	defer span.End()

	id := strconv.FormatInt(userID, 10)
	keys := []string{
		"identity:otp_resend:cooldown:" + id,
		"identity:otp_resend:count:" + id,
	}

	res, err := allowScript.Run(ctx, r.client, keys,
		policy.Cooldown.Milliseconds(),
		policy.Window.Milliseconds(),
		policy.MaxPerWindow,
	).Int()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	return res == 1, nil
}
