package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func newTestGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CartSlot{}); err != nil {
		t.Fatalf("migrate cart slot failed: %v", err)
	}
	return db
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

// 各驱动共用的读写语义
func runBackendContract(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	if _, err := backend.Get(ctx, "cart:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key should return ErrNotFound, got %v", err)
	}

	first := []byte(`[{"productId":"P1","quantity":1}]`)
	if err := backend.Set(ctx, "cart:s1", first); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := backend.Get(ctx, "cart:s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != string(first) {
		t.Fatalf("value want %s got %s", first, got)
	}

	second := []byte(`[{"productId":"P1","quantity":4}]`)
	if err := backend.Set(ctx, "cart:s1", second); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err = backend.Get(ctx, "cart:s1")
	if err != nil {
		t.Fatalf("get after overwrite failed: %v", err)
	}
	if string(got) != string(second) {
		t.Fatalf("overwritten value want %s got %s", second, got)
	}

	if err := backend.Delete(ctx, "cart:s1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := backend.Get(ctx, "cart:s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted key should return ErrNotFound, got %v", err)
	}
	if err := backend.Delete(ctx, "cart:s1"); err != nil {
		t.Fatalf("deleting absent key should not fail: %v", err)
	}
}

func TestMemoryBackendContract(t *testing.T) {
	runBackendContract(t, NewMemoryBackend())
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	backend := NewMemoryBackend()
	value := []byte("abc")
	if err := backend.Set(context.Background(), "k", value); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value[0] = 'x'
	got, _ := backend.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("stored value should not alias caller slice, got %s", got)
	}
}

func TestFileBackendContract(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("new file backend failed: %v", err)
	}
	runBackendContract(t, backend)
}

func TestFileBackendKeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new file backend failed: %v", err)
	}
	if err := backend.Set(context.Background(), "../../etc/cart", []byte("[]")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one slot file in %s, got %d", dir, len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".json" {
		t.Fatalf("unexpected slot file name %s", entries[0].Name())
	}
}

func TestFileBackendCanceledContext(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("new file backend failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := backend.Set(ctx, "k", []byte("v")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestGormBackendContract(t *testing.T) {
	runBackendContract(t, NewGormBackend(newTestGormDB(t)))
}

func TestRedisBackendContract(t *testing.T) {
	client, _ := newTestRedis(t)
	runBackendContract(t, NewRedisBackend(client, "sc", 0))
}

func TestRedisBackendPrefixAndTTL(t *testing.T) {
	client, mr := newTestRedis(t)
	backend := NewRedisBackend(client, "sc", time.Hour)
	if err := backend.Set(context.Background(), "cart:s1", []byte("[]")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if !mr.Exists("sc:cart:s1") {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}
	if ttl := mr.TTL("sc:cart:s1"); ttl != time.Hour {
		t.Fatalf("ttl want 1h got %s", ttl)
	}
}

func TestRedisBackendUnavailable(t *testing.T) {
	client, mr := newTestRedis(t)
	backend := NewRedisBackend(client, "", 0)
	mr.Close()
	if err := backend.Set(context.Background(), "k", []byte("v")); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}

func TestNewSelectsDriver(t *testing.T) {
	client, _ := newTestRedis(t)
	cases := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "memory", opts: Options{Driver: "memory"}},
		{name: "file", opts: Options{Driver: "file", Dir: t.TempDir()}},
		{name: "database", opts: Options{Driver: "database", DB: newTestGormDB(t)}},
		{name: "database without db", opts: Options{Driver: "database"}, wantErr: true},
		{name: "redis", opts: Options{Driver: "redis", Redis: client}},
		{name: "redis without client", opts: Options{Driver: "redis"}, wantErr: true},
		{name: "unknown", opts: Options{Driver: "s3"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend, err := New(tc.opts)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tc.name)
				}
				return
			}
			if err != nil || backend == nil {
				t.Fatalf("new backend failed: %v", err)
			}
		})
	}
}
