package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/BryanHuaPer/viajeros-peru-sub002/consts"
	rediskey "github.com/BryanHuaPer/viajeros-peru-sub002/consts/redisKey"
	"github.com/BryanHuaPer/viajeros-peru-sub002/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// luaTokenBucket actualiza el cubo de tokens de forma atómica y decide si la
// petición pasa. Tiempos en milisegundos para no perder precisión.
//
//	KEYS[1]: key de limitación (rate:limit:ip:{ip})
//	ARGV[1]: timestamp actual en ms
//	ARGV[2]: capacidad del cubo
//	ARGV[3]: tokens generados por segundo
//	ARGV[4]: tokens que consume esta petición
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

local time_diff = math.max(0, now - last_time)
local new_tokens = math.floor((time_diff * rate) / 1000)

if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// RateLimiter limitador por IP con cubo de tokens en Redis. Si Redis no está
// disponible degrada a un limitador local en proceso (golang.org/x/time);
// nunca degrada a rechazar tráfico.
type RateLimiter struct {
	redisClient *redis.Client
	rate        float64
	burst       int

	mu      sync.Mutex
	locales map[string]*rate.Limiter
}

// NewRateLimiter crea el limitador. redisClient puede ser nil.
func NewRateLimiter(redisClient *redis.Client, porSegundo float64, burst int) *RateLimiter {
	return &RateLimiter{
		redisClient: redisClient,
		rate:        porSegundo,
		burst:       burst,
		locales:     make(map[string]*rate.Limiter),
	}
}

// Allow decide si la petición de esa IP pasa.
func (r *RateLimiter) Allow(ctx context.Context, ip string) bool {
	if r.redisClient == nil {
		return r.allowLocal(ip)
	}

	// timeout corto e independiente: un Redis lento no debe frenar el tráfico
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	key := rediskey.RateLimitIPKey(ip)
	now := time.Now().UnixMilli()
	result, err := r.redisClient.Eval(redisCtx, luaTokenBucket, []string{key}, now, r.burst, r.rate, 1).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "limitación en Redis agotó el tiempo, degradando a limitador local",
				logger.String("ip", ip))
		} else {
			logger.Error(ctx, "fallo de limitación en Redis, degradando a limitador local",
				logger.String("ip", ip),
				logger.ErrorField("error", err))
		}
		return r.allowLocal(ip)
	}

	allowed, ok := result.(int64)
	if !ok {
		return r.allowLocal(ip)
	}
	return allowed == 1
}

// allowLocal limitador en memoria por IP. Solo protege este proceso, pero es
// mejor que nada cuando Redis está caído.
func (r *RateLimiter) allowLocal(ip string) bool {
	r.mu.Lock()
	limiter, ok := r.locales[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(r.rate), r.burst)
		r.locales[ip] = limiter
	}
	r.mu.Unlock()
	return limiter.Allow()
}

// IPRateLimitMiddleware corta con 429 y el sobre de error estándar cuando la
// IP agota su cubo de tokens.
func IPRateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip, ok := GetClientIPSafe(c)
		if !ok {
			logger.Warn(NewContextWithGin(c), "IP de cliente no resoluble, se omite la limitación",
				logger.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		if !limiter.Allow(NewContextWithGin(c), ip) {
			logger.Warn(NewContextWithGin(c), "petición limitada por IP",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"exito": false,
				"error": consts.GetMessage(consts.CodeTooManyRequests),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
