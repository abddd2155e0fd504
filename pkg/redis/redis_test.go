package redis

import (
	"context"
	"testing"
	"time"

	"github.com/wonny/equityscreen/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    "1",
	})
	if err == nil {
		t.Error("Expected error for unreachable redis")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := YahooRateLimit(4)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != cfg.Limit {
		t.Errorf("Expected remaining = %d, got %d", cfg.Limit, remaining)
	}

	if err := limiter.Wait(context.Background(), cfg); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	if cache.Enabled() {
		t.Error("Expected cache to be disabled")
	}

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}
}

func TestYahooRateLimit(t *testing.T) {
	tests := []struct {
		rps  float64
		want int
	}{
		{4, 4},
		{2.5, 2},
		{0.5, 1},
		{0, 1},
	}

	for _, tt := range tests {
		cfg := YahooRateLimit(tt.rps)
		if cfg.Limit != tt.want {
			t.Errorf("YahooRateLimit(%v).Limit = %d, want %d", tt.rps, cfg.Limit, tt.want)
		}
		if cfg.Key != "yahoo" || cfg.Window != time.Second {
			t.Errorf("unexpected config %+v", cfg)
		}
	}
}

func TestSnapshotKey(t *testing.T) {
	if got := SnapshotKey("AAPL", "6mo"); got != "snapshot:AAPL:6mo" {
		t.Errorf("got %q", got)
	}
}
