package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { _ = Close() })
	return mr
}

type handoffStatus struct {
	Status string `json:"status"`
}

func TestJSONRoundTrip(t *testing.T) {
	mr := setupMiniRedis(t)
	ctx := context.Background()

	if err := SetJSON(ctx, "handoff:H1", handoffStatus{Status: "received"}, time.Minute); err != nil {
		t.Fatalf("set json failed: %v", err)
	}
	if !mr.Exists("test:handoff:H1") {
		t.Fatalf("key should carry prefix")
	}
	if ttl := mr.TTL("test:handoff:H1"); ttl != time.Minute {
		t.Fatalf("ttl want 1m got %s", ttl)
	}

	var got handoffStatus
	found, err := GetJSON(ctx, "handoff:H1", &got)
	if err != nil || !found || got.Status != "received" {
		t.Fatalf("get json want received got %+v found=%v err=%v", got, found, err)
	}

	if err := Del(ctx, "handoff:H1"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	found, err = GetJSON(ctx, "handoff:H1", &got)
	if err != nil || found {
		t.Fatalf("deleted key should miss, found=%v err=%v", found, err)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("disabled cache should report disabled")
	}
	var dest handoffStatus
	found, err := GetJSON(context.Background(), "k", &dest)
	if err != nil || found {
		t.Fatalf("disabled get should miss silently, found=%v err=%v", found, err)
	}
	if err := SetJSON(context.Background(), "k", dest, 0); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}
}

func TestBuildKey(t *testing.T) {
	UseClient(nil, "")
	if Prefix() != defaultPrefix {
		t.Fatalf("empty prefix should fall back to %s", defaultPrefix)
	}
	if BuildKey(" cart ") != "sc:cart" || BuildKey("") != "sc" {
		t.Fatalf("unexpected keys %q %q", BuildKey(" cart "), BuildKey(""))
	}
}
