package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/GareBear99/admension/pkg/redis"
	"github.com/GareBear99/admension/pkg/utils"
)

// Limits holds fixed-window request budgets per client IP.
type Limits struct {
	PerMinute int64
	PerHour   int64
	PerDay    int64
}

// DefaultLimits are deliberately lenient: the tracker fires a handful of
// events per pageview, so an honest session never gets near them.
func DefaultLimits() Limits {
	return Limits{
		PerMinute: int64(utils.EnvInt("RATE_LIMIT_PER_MINUTE", 120)),
		PerHour:   int64(utils.EnvInt("RATE_LIMIT_PER_HOUR", 3000)),
		PerDay:    int64(utils.EnvInt("RATE_LIMIT_PER_DAY", 20000)),
	}
}

// timeoutLadder maps the violation count to the block duration. Repeat
// offenders wait progressively longer, capped at the last rung.
var timeoutLadder = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	time.Hour,
	2 * time.Hour,
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Violations int64
}

type cachedBlock struct {
	until      time.Time
	violations int64
}

// Limiter enforces per-IP budgets with Redis fixed windows and escalating
// timeouts for violators. Active blocks are cached in-process so blocked
// clients stop costing Redis round trips.
type Limiter struct {
	Logger *zap.Logger
	Redis  *redis.Client
	Limits Limits

	blocked *xsync.Map[string, cachedBlock]
}

func NewLimiter(logger *zap.Logger, redisClient *redis.Client, limits Limits) *Limiter {
	return &Limiter{
		Logger:  logger,
		Redis:   redisClient,
		Limits:  limits,
		blocked: xsync.NewMap[string, cachedBlock](),
	}
}

// Allow checks whether the client may submit another event. On Redis failure
// it fails open: losing rate limiting briefly beats dropping real traffic.
func (l *Limiter) Allow(ctx context.Context, ip string) Decision {
	now := time.Now()

	if cached, ok := l.blocked.Load(ip); ok {
		if now.Before(cached.until) {
			return Decision{RetryAfter: cached.until.Sub(now), Violations: cached.violations}
		}
		l.blocked.Delete(ip)
	}

	violations, ttl, err := l.Redis.GetBlocked(ctx, blockKey(ip))
	if err != nil {
		l.Logger.Warn("Rate limit check failed, allowing request", zap.String("ip", ip), zap.Error(err))
		return Decision{Allowed: true}
	}
	if ttl > 0 {
		l.blocked.Store(ip, cachedBlock{until: now.Add(ttl), violations: violations})
		return Decision{RetryAfter: ttl, Violations: violations}
	}

	windows := []struct {
		name   string
		window time.Duration
		limit  int64
	}{
		{"minute", time.Minute, l.Limits.PerMinute},
		{"hour", time.Hour, l.Limits.PerHour},
		{"day", 24 * time.Hour, l.Limits.PerDay},
	}
	for _, w := range windows {
		key := fmt.Sprintf("ratelimit:%s:%s:%d", ip, w.name, now.Truncate(w.window).Unix())
		count, err := l.Redis.IncrWindow(ctx, key, w.window)
		if err != nil {
			l.Logger.Warn("Rate limit check failed, allowing request", zap.String("ip", ip), zap.Error(err))
			return Decision{Allowed: true}
		}
		if count > w.limit {
			return l.recordViolation(ctx, ip, w.name)
		}
	}
	return Decision{Allowed: true}
}

// Status reports the current block state for an IP without counting a request.
func (l *Limiter) Status(ctx context.Context, ip string) (Decision, error) {
	violations, ttl, err := l.Redis.GetBlocked(ctx, blockKey(ip))
	if err != nil {
		return Decision{}, err
	}
	if ttl > 0 {
		return Decision{RetryAfter: ttl, Violations: violations}, nil
	}
	return Decision{Allowed: true, Violations: violations}, nil
}

func (l *Limiter) recordViolation(ctx context.Context, ip, window string) Decision {
	violations, err := l.Redis.IncrWindow(ctx, "violations:"+ip, 24*time.Hour)
	if err != nil {
		violations = 1
	}

	rung := violations
	if rung > int64(len(timeoutLadder)) {
		rung = int64(len(timeoutLadder))
	}
	timeout := timeoutLadder[rung-1]

	if err := l.Redis.SetBlocked(ctx, blockKey(ip), violations, timeout); err != nil {
		l.Logger.Warn("Failed to persist rate limit block", zap.String("ip", ip), zap.Error(err))
	}
	l.blocked.Store(ip, cachedBlock{until: time.Now().Add(timeout), violations: violations})

	l.Logger.Info("Rate limit exceeded",
		zap.String("ip", ip),
		zap.String("window", window),
		zap.Int64("violations", violations),
		zap.Duration("timeout", timeout),
	)
	return Decision{RetryAfter: timeout, Violations: violations}
}

func blockKey(ip string) string { return "timeout:" + ip }
