package app

import (
	"strings"
	"time"

	"github.com/yungbote/assistant-store/internal/clients/redis"
	"github.com/yungbote/assistant-store/internal/data/db"
	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/platform/envutil"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type Config struct {
	DatabaseURL string
	DBEcho      bool
	AutoMigrate bool

	HTTPAddr    string
	CORSOrigins []string

	RedisAddr          string
	RedisTTL           time.Duration
	ContextCachePrefix string

	ServiceName string
	Environment string
	Version     string

	OTel    observability.OtelConfig
	Metrics observability.MetricsConfig
}

func LoadConfig(log *logger.Logger) Config {
	serviceName := envutil.String("SERVICE_NAME", observability.DefaultServiceName, log)
	environment := envutil.String("ENVIRONMENT", "development", log)
	version := envutil.String("SERVICE_VERSION", "dev", log)

	return Config{
		DatabaseURL: envutil.String("DATABASE_URL", db.DefaultDatabaseURL, log),
		DBEcho:      envutil.Bool("DB_ECHO", false, log),
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true, log),

		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080", log),
		CORSOrigins: splitList(envutil.String("CORS_ALLOW_ORIGINS", "", log)),

		RedisAddr:          envutil.String("REDIS_ADDR", "", log),
		RedisTTL:           envutil.Duration("REDIS_TTL", redis.DefaultTTL, log),
		ContextCachePrefix: envutil.String("CONTEXT_CACHE_PREFIX", redis.DefaultPrefix, log),

		ServiceName: serviceName,
		Environment: environment,
		Version:     version,

		OTel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: serviceName,
			Environment: environment,
			Version:     version,
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, log),
		},
		Metrics: observability.MetricsConfig{
			Enabled:          envutil.Bool("METRICS_ENABLED", false, log),
			ScrapeInterval:   envutil.Duration("METRICS_SCRAPE_INTERVAL", 10*time.Second, log),
			LatencyThreshold: envutil.Float("SLO_API_LATENCY_THRESHOLD_SECONDS", 0.5, log),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
