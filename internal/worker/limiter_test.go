package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "Sector 4"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "Harbor"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	_ = limiter.Allow("Sector 4")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "Sector 4"); err == nil {
		t.Error("expected wait to fail when the context ends first")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("Sector 4") {
		t.Error("first request should pass")
	}

	// Same location, different spelling: same bucket
	if limiter.Allow("  SECTOR   4 ") {
		t.Error("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("Sector 9") {
		t.Error("expected allow for another location")
	}
}

func TestLimiter_SetKeyRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetKeyRate("Downtown", 0.1, 1)

	if !limiter.Allow("downtown") {
		t.Error("first request should pass")
	}
	if limiter.Allow("downtown") {
		t.Error("second request should fail")
	}
	if !limiter.Allow("Uptown") {
		t.Error("other location should pass")
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := normalizeKey("  Sector\t4 "); got != "sector 4" {
		t.Errorf("expected 'sector 4', got %q", got)
	}
}
