package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

const (
	DefaultTTL    = 10 * time.Minute
	DefaultPrefix = "assistant:context:"
)

// ContextCache holds serialized UserContext rows keyed by user id. Entries are
// versioned by LastUpdated at microsecond precision, the resolution storage keeps.
//
// Writers call Invalidate after commit with the committed version; readers call Fill
// after loading from storage. A Fill older than the cached entry or than the last
// invalidated version is dropped, so a reader racing a writer cannot cache a window
// the writer already replaced.
type ContextCache interface {
	// Get reports a miss as (nil, nil).
	Get(ctx context.Context, userID string) (*types.UserContext, error)
	// Fill reports whether uc was stored.
	Fill(ctx context.Context, uc *types.UserContext) (bool, error)
	// Invalidate drops the entry. A zero version drops without raising the floor.
	Invalidate(ctx context.Context, userID string, version time.Time) error
	Close() error
}

// Version is the comparable form of a context's LastUpdated.
func Version(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

type Config struct {
	Addr   string
	TTL    time.Duration
	Prefix string
}

type contextCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

// KEYS[1] entry hash {v, data}, KEYS[2] floor. ARGV: version, payload, ttl ms.
var fillScript = goredis.NewScript(`
local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
local v = tonumber(ARGV[1])
if v < floor then return 0 end
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > v then return 0 end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// KEYS[1] entry hash, KEYS[2] floor. ARGV: version, ttl ms. The floor only moves up.
var invalidateScript = goredis.NewScript(`
redis.call('DEL', KEYS[1])
local v = tonumber(ARGV[1])
if v > 0 then
  local floor = tonumber(redis.call('GET', KEYS[2]) or '0')
  if v > floor then
    redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
  else
    redis.call('PEXPIRE', KEYS[2], ARGV[2])
  end
end
return 1
`)

// NewContextCache connects and pings Redis. An empty Addr yields the no-op cache.
func NewContextCache(log *logger.Logger, cfg Config) (ContextCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("REDIS_ADDR not set; context cache disabled")
		return NewNopContextCache(), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewContextCacheFromClient(log, rdb, cfg), nil
}

func NewContextCacheFromClient(log *logger.Logger, rdb goredis.UniversalClient, cfg Config) ContextCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &contextCache{
		log:    log.With("service", "RedisContextCache"),
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
	}
}

// Both keys share a hash tag so the scripts stay single-slot on a cluster.
func (c *contextCache) keys(userID string) []string {
	entry := c.prefix + "{" + userID + "}"
	return []string{entry, entry + ":floor"}
}

func (c *contextCache) Get(ctx context.Context, userID string) (*types.UserContext, error) {
	entry := c.keys(userID)[0]
	raw, err := c.rdb.HGet(ctx, entry, "data").Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var uc types.UserContext
	if err := json.Unmarshal(raw, &uc); err != nil {
		c.log.Warn("bad cached context payload; dropping", "user_id", userID, "error", err)
		_ = c.rdb.Del(ctx, entry).Err()
		return nil, nil
	}
	return &uc, nil
}

func (c *contextCache) Fill(ctx context.Context, uc *types.UserContext) (bool, error) {
	if uc == nil || uc.UserID == "" {
		return false, fmt.Errorf("context with user_id required")
	}
	raw, err := json.Marshal(uc)
	if err != nil {
		return false, err
	}
	stored, err := fillScript.Run(ctx, c.rdb, c.keys(uc.UserID), Version(uc.LastUpdated), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis fill: %w", err)
	}
	return stored == 1, nil
}

func (c *contextCache) Invalidate(ctx context.Context, userID string, version time.Time) error {
	if err := invalidateScript.Run(ctx, c.rdb, c.keys(userID), Version(version), c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func (c *contextCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

type nopContextCache struct{}

// NewNopContextCache always misses.
func NewNopContextCache() ContextCache { return nopContextCache{} }

func (nopContextCache) Get(context.Context, string) (*types.UserContext, error) { return nil, nil }
func (nopContextCache) Fill(context.Context, *types.UserContext) (bool, error)  { return false, nil }
func (nopContextCache) Invalidate(context.Context, string, time.Time) error     { return nil }
func (nopContextCache) Close() error                                            { return nil }
