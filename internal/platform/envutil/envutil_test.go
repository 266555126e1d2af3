package envutil

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_STRING", "  value  ")
	if got := String("ENVUTIL_TEST_STRING", "def", nil); got != "value" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("ENVUTIL_TEST_STRING", "   ")
	if got := String("ENVUTIL_TEST_STRING", "def", nil); got != "def" {
		t.Fatalf("expected default for blank value, got %q", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "42")
	if got := Int("ENVUTIL_TEST_INT", 1, nil); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "forty-two")
	if got := Int("ENVUTIL_TEST_INT", 1, nil); got != 1 {
		t.Fatalf("expected default on parse failure, got %d", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "on")
	if !Bool("ENVUTIL_TEST_BOOL", false, nil) {
		t.Fatalf("expected true")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if Bool("ENVUTIL_TEST_BOOL", false, nil) {
		t.Fatalf("expected default false")
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_DURATION", "90s")
	if got := Duration("ENVUTIL_TEST_DURATION", time.Minute, nil); got != 90*time.Second {
		t.Fatalf("got %s", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_FLOAT", "0.25")
	if got := Float("ENVUTIL_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("got %v", got)
	}
	t.Setenv("ENVUTIL_TEST_FLOAT", "x")
	if got := Float("ENVUTIL_TEST_FLOAT", 1, nil); got != 1 {
		t.Fatalf("expected default on parse failure, got %v", got)
	}
}
