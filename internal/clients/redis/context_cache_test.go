package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/assistant-store/internal/domain"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

func testCache(t *testing.T) ContextCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	prefix := "test:context:" + time.Now().Format("150405.000000") + ":"
	cache := NewContextCacheFromClient(logger.NewNop(), rdb, Config{TTL: time.Minute, Prefix: prefix})
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func contextAt(userID string, at time.Time, msgs ...string) *types.UserContext {
	uc := types.NewUserContext(userID)
	for _, m := range msgs {
		uc.AddMessage("user", m)
	}
	uc.LastUpdated = at
	return uc
}

func TestContextCache_RoundTrip(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	if got, err := cache.Get(ctx, "+15550001"); err != nil || got != nil {
		t.Fatalf("expected miss, got=%v err=%v", got, err)
	}

	uc := contextAt("+15550001", time.Now().UTC(), "Hola")
	if stored, err := cache.Fill(ctx, uc); err != nil || !stored {
		t.Fatalf("Fill: stored=%v err=%v", stored, err)
	}
	got, err := cache.Get(ctx, "+15550001")
	if err != nil || got == nil {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}
	if len(got.ContextMessages) != 1 || got.ContextMessages[0].Content != "Hola" || got.ContextWindow != 10 {
		t.Fatalf("unexpected cached context: %+v", got)
	}

	if err := cache.Invalidate(ctx, "+15550001", time.Time{}); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if got, _ := cache.Get(ctx, "+15550001"); got != nil {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestContextCache_FillNeverRegresses(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()
	base := time.Now().UTC()

	newer := contextAt("+15550002", base.Add(time.Second), "one", "two")
	older := contextAt("+15550002", base, "one")
	if stored, err := cache.Fill(ctx, newer); err != nil || !stored {
		t.Fatalf("Fill newer: stored=%v err=%v", stored, err)
	}
	if stored, err := cache.Fill(ctx, older); err != nil || stored {
		t.Fatalf("expected older fill to be dropped: stored=%v err=%v", stored, err)
	}
	if got, _ := cache.Get(ctx, "+15550002"); got == nil || len(got.ContextMessages) != 2 {
		t.Fatalf("expected the newer window to stay cached, got %+v", got)
	}
}

func TestContextCache_InvalidateRaisesFloor(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()
	base := time.Now().UTC()

	// A reader loaded the v1 row, then a writer committed v2 and invalidated.
	if err := cache.Invalidate(ctx, "+15550003", base.Add(time.Second)); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if stored, err := cache.Fill(ctx, contextAt("+15550003", base, "one")); err != nil || stored {
		t.Fatalf("expected fill below the floor to be dropped: stored=%v err=%v", stored, err)
	}
	// An older invalidation must not lower the floor.
	if err := cache.Invalidate(ctx, "+15550003", base); err != nil {
		t.Fatalf("Invalidate older: %v", err)
	}
	if stored, _ := cache.Fill(ctx, contextAt("+15550003", base, "one")); stored {
		t.Fatalf("floor moved down after an older invalidation")
	}
	if stored, err := cache.Fill(ctx, contextAt("+15550003", base.Add(time.Second), "one", "two")); err != nil || !stored {
		t.Fatalf("expected fill at the floor to be stored: stored=%v err=%v", stored, err)
	}
}

func TestVersion_MicrosecondResolution(t *testing.T) {
	at := time.Date(2025, 3, 14, 15, 9, 26, 535897999, time.UTC)
	if Version(at) != Version(at.Truncate(time.Microsecond)) {
		t.Fatalf("expected sub-microsecond digits to be ignored")
	}
	if Version(time.Time{}) != 0 {
		t.Fatalf("expected zero version for zero time")
	}
}

func TestNewContextCache_EmptyAddrIsNop(t *testing.T) {
	cache, err := NewContextCache(logger.NewNop(), Config{})
	if err != nil {
		t.Fatalf("NewContextCache: %v", err)
	}
	if stored, err := cache.Fill(context.Background(), types.NewUserContext("u")); stored || err != nil {
		t.Fatalf("nop Fill: stored=%v err=%v", stored, err)
	}
	if got, err := cache.Get(context.Background(), "u"); got != nil || err != nil {
		t.Fatalf("nop cache should always miss: got=%v err=%v", got, err)
	}
}
