package browser

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestPickUserAgentCoversPool(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := UserAgents()
	if len(pool) != 5 {
		t.Fatalf("expected 5 user agents, got %d", len(pool))
	}

	hits := map[string]int{}
	for i := 0; i < 500; i++ {
		ua := PickUserAgent(rng)
		hits[ua]++
	}
	for _, ua := range pool {
		if hits[ua] == 0 {
			t.Fatalf("user agent never picked: %q", ua)
		}
	}
	if len(hits) != len(pool) {
		t.Fatalf("picked %d distinct agents, want %d", len(hits), len(pool))
	}
}

func TestPickUserAgentDeterministic(t *testing.T) {
	a := PickUserAgent(rand.New(rand.NewSource(42)))
	b := PickUserAgent(rand.New(rand.NewSource(42)))
	if a != b {
		t.Fatalf("same seed picked %q and %q", a, b)
	}
}

func TestUserAgentsReturnsCopy(t *testing.T) {
	pool := UserAgents()
	pool[0] = "changed"
	if UserAgents()[0] == "changed" {
		t.Fatalf("UserAgents must not expose the pool")
	}
}

func TestPause(t *testing.T) {
	if err := Pause(context.Background(), 0); err != nil {
		t.Fatalf("Pause(0) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Pause(ctx, time.Hour); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Pause did not return promptly on cancelled context")
	}
}
