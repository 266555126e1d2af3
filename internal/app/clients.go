package app

import (
	"github.com/yungbote/assistant-store/internal/clients/redis"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type Clients struct {
	ContextCache redis.ContextCache
}

// wireClients degrades to the no-op cache when Redis is unreachable; storage stays
// the source of truth.
func wireClients(log *logger.Logger, cfg Config) Clients {
	log.Info("Wiring clients...")
	cache, err := redis.NewContextCache(log, redis.Config{
		Addr:   cfg.RedisAddr,
		TTL:    cfg.RedisTTL,
		Prefix: cfg.ContextCachePrefix,
	})
	if err != nil {
		log.Warn("Context cache unavailable; continuing without it", "error", err)
		cache = redis.NewNopContextCache()
	}
	return Clients{ContextCache: cache}
}

func (c Clients) Close() {
	if c.ContextCache != nil {
		_ = c.ContextCache.Close()
	}
}
