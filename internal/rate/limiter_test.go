package rate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDisabledLimiterAdmitsEverything(t *testing.T) {
	l := New(Config{PerMinute: 0})
	if l != nil {
		t.Fatal("expected nil limiter for disabled config")
	}
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatal("nil limiter must admit")
		}
	}
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter wait: %v", err)
	}
}

func TestBurstThenDeny(t *testing.T) {
	l := New(Config{PerMinute: 60, Burst: 3})
	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("expected burst token %d admitted", i)
		}
	}
	if l.Allow() {
		t.Fatal("expected fourth request denied")
	}
}

func TestWaitFailsFastWhenDeadlineTooClose(t *testing.T) {
	l := New(Config{PerMinute: 1, Burst: 1})
	if !l.Allow() {
		t.Fatal("expected first token")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestWaitReturnsContextError(t *testing.T) {
	l := New(Config{PerMinute: 60, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultBurst(t *testing.T) {
	l := New(Config{PerMinute: 100})
	if got := int(l.Tokens()); got != 10 {
		t.Fatalf("expected default burst 10, got %d", got)
	}
}
