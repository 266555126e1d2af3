package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/assistant-store/internal/platform/logger"
)

const metricsNamespace = "as"

type MetricsConfig struct {
	Enabled bool
	// ScrapeInterval drives the redis collector.
	ScrapeInterval time.Duration
	// LatencyThreshold is the "good request" bound in seconds.
	LatencyThreshold float64
}

type Metrics struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	apiReqTotal  prometheus.Counter
	apiReqError  prometheus.Counter
	apiReqGood   prometheus.Counter
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
	redisUp      prometheus.Gauge
	redisPing    prometheus.Gauge
	cacheLookups *prometheus.CounterVec

	dbStatsOnce      sync.Once
	latencyThreshold float64
	scrapeInterval   time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current is nil until Init runs with metrics enabled; every method is nil-safe.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(cfg)
		if log != nil {
			log.Info("metrics enabled", "scrape_interval", instance.scrapeInterval.String())
		}
	})
	return instance
}

// NewMetrics builds a set on its own registry, so tests can create as many as they like.
func NewMetrics(cfg MetricsConfig) *Metrics {
	threshold := cfg.LatencyThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	interval := cfg.ScrapeInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_requests_total",
			Help:      "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request latency in seconds by method/route/status.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "api_inflight_requests",
			Help:      "In-flight API requests.",
		}),
		apiReqTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_requests_all_total",
			Help:      "Total API requests (all).",
		}),
		apiReqError: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_requests_error_total",
			Help:      "Total API requests with 5xx status.",
		}),
		apiReqGood: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_requests_good_latency_total",
			Help:      "Total API requests under the latency threshold.",
		}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_operations_total",
			Help:      "Storage operations by table/op/status.",
		}, []string{"table", "op", "status"}),
		storeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Storage operation latency in seconds by table/op.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"table", "op"}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "redis_up",
			Help:      "Redis connectivity (1=up, 0=down).",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "redis_ping_seconds",
			Help:      "Redis ping latency in seconds.",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "context_cache_lookups_total",
			Help:      "Context cache lookups by result.",
		}, []string{"result"}),

		latencyThreshold: threshold,
		scrapeInterval:   interval,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
	if dur.Seconds() <= m.latencyThreshold {
		m.apiReqGood.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveStoreOp records one gorm statement. status is "ok" or an error code.
func (m *Metrics) ObserveStoreOp(table, op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if table == "" {
		table = "unknown"
	}
	m.storeOps.WithLabelValues(table, op, status).Inc()
	m.storeLatency.WithLabelValues(table, op).Observe(dur.Seconds())
}

// ObserveCacheLookup takes "hit", "miss" or "error".
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RegisterDBPool exports database/sql pool statistics for db. Only the first call registers.
func (m *Metrics) RegisterDBPool(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	m.dbStatsOnce.Do(func() {
		sqlDB, err := db.DB()
		if err != nil {
			if log != nil {
				log.Warn("metrics: db pool stats unavailable", "error", err)
			}
			return
		}
		if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, db.Dialector.Name())); err != nil && log != nil {
			log.Warn("metrics: db pool collector not registered", "error", err)
		}
	})
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		<-ctx.Done()
		_ = rdb.Close()
	}()
	go m.every(ctx, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil && ctx.Err() == nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	ticker := time.NewTicker(m.scrapeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}
