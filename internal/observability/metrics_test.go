package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scrape status %d: %s", resp.StatusCode, body)
	}
	return string(body)
}

func TestMetrics_ObserveAPI(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, LatencyThreshold: 0.1})
	m.ObserveAPI("GET", "/api/users/:id", "200", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/users/:id", "500", 2*time.Second)

	if got := promtest.ToFloat64(m.apiReqTotal); got != 2 {
		t.Fatalf("total = %v", got)
	}
	if got := promtest.ToFloat64(m.apiReqError); got != 1 {
		t.Fatalf("errors = %v", got)
	}
	if got := promtest.ToFloat64(m.apiReqGood); got != 1 {
		t.Fatalf("good = %v", got)
	}

	out := scrape(t, m)
	for _, want := range []string{
		`as_api_requests_total{method="GET",route="/api/users/:id",status="200"} 1`,
		`as_api_request_duration_seconds_bucket{method="GET",route="/api/users/:id",status="500",le="+Inf"} 1`,
		"# TYPE as_api_inflight_requests gauge",
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMetrics_StoreAndCache(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.ObserveStoreOp("", "create", "ok", time.Millisecond)
	m.ObserveStoreOp("users", "create", "conflict", time.Millisecond)
	m.ObserveCacheLookup("hit")
	m.ObserveCacheLookup("hit")
	m.ApiInflightInc()
	m.ApiInflightInc()
	m.ApiInflightDec()

	if got := promtest.ToFloat64(m.storeOps.WithLabelValues("unknown", "create", "ok")); got != 1 {
		t.Fatalf("store ops for unnamed table = %v", got)
	}
	if got := promtest.ToFloat64(m.cacheLookups.WithLabelValues("hit")); got != 2 {
		t.Fatalf("cache hits = %v", got)
	}
	if got := promtest.ToFloat64(m.apiInflight); got != 1 {
		t.Fatalf("inflight = %v", got)
	}
}

func TestMetrics_RegisterDBPool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:metrics_pool?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	m := NewMetrics(MetricsConfig{Enabled: true})
	m.RegisterDBPool(nil, db)
	m.RegisterDBPool(nil, db)

	if !strings.Contains(scrape(t, m), `go_sql_max_open_connections{db_name="sqlite"}`) {
		t.Fatalf("expected db pool stats in scrape")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveStoreOp("users", "query", "ok", time.Millisecond)
	m.ObserveCacheLookup("hit")
	m.ApiInflightInc()
	m.RegisterDBPool(nil, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler status = %d", rec.Code)
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc , bad, x=1,=2 ")
	if len(h) != 2 || h["api-key"] != "abc" || h["x"] != "1" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("expected nil for empty")
	}
}
