package market

import (
	"context"
	"testing"
	"time"
)

func TestPacer_Spacing(t *testing.T) {
	interval := 50 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	// First acquire is free, the next two wait one interval each
	if elapsed < 2*interval {
		t.Errorf("Three acquires finished in %v, expected at least %v", elapsed, 2*interval)
	}
}

func TestPacer_FirstAcquireImmediate(t *testing.T) {
	p := NewPacer(time.Second)

	start := time.Now()
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("First acquire should not wait, took %v", elapsed)
	}
}

func TestPacer_ContextCancel(t *testing.T) {
	p := NewPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Acquire(ctx); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- p.Acquire(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Cancelled acquire should return an error")
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancel")
	}
}
