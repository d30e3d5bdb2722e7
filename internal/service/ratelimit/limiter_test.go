package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	l := New(1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should pass")
	}
	if l.Allow("a") {
		t.Fatal("third request within the same instant should be limited")
	}
	if !l.Allow("b") {
		t.Fatal("keys must not share a bucket")
	}
	now = now.Add(1100 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatal("token should refill after one second")
	}
}

func TestLimiter_Prune(t *testing.T) {
	l := New(5, 5)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(time.Hour)
	l.Allow("fresh")
	if n := l.Prune(time.Minute); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
}
