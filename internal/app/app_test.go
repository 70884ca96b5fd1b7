package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/config"
	"github.com/dujiao-next/storefront-cart/internal/storage"
)

type countingEvictor struct {
	calls  atomic.Int32
	before atomic.Value
}

func (e *countingEvictor) EvictIdle(before time.Time) int {
	e.calls.Add(1)
	e.before.Store(before)
	return 1
}

func TestSweeperSweepOnceUsesIdleCutoff(t *testing.T) {
	evictor := &countingEvictor{}
	sweeper := NewSweeperService(evictor, time.Second, 10*time.Minute)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	if got := sweeper.SweepOnce(); got != 1 {
		t.Fatalf("want 1 evicted, got %d", got)
	}
	cutoff := evictor.before.Load().(time.Time)
	if !cutoff.Equal(now.Add(-10 * time.Minute)) {
		t.Fatalf("unexpected cutoff: %v", cutoff)
	}
}

func TestSweeperStartTicksUntilStopped(t *testing.T) {
	evictor := &countingEvictor{}
	sweeper := NewSweeperService(evictor, 5*time.Millisecond, time.Minute)

	done := make(chan error, 1)
	go func() { done <- sweeper.Start(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for evictor.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if err := sweeper.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	// 重复 Stop 不应 panic
	_ = sweeper.Stop(context.Background())
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not exit after stop")
	}
}

func TestNewSweeperServiceDefaults(t *testing.T) {
	sweeper := NewSweeperService(&countingEvictor{}, 0, 0)
	if sweeper.interval != defaultSweepInterval || sweeper.idle != defaultIdleTimeout {
		t.Fatalf("unexpected defaults: %v %v", sweeper.interval, sweeper.idle)
	}
	if sweeper.Name() != "cart_sweeper" {
		t.Fatalf("unexpected name: %s", sweeper.Name())
	}
}

type stubService struct {
	name    string
	startFn func(ctx context.Context) error
	stopped atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error { return s.startFn(ctx) }

func (s *stubService) Stop(ctx context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesWhenOneFails(t *testing.T) {
	failing := &stubService{name: "failing", startFn: func(ctx context.Context) error {
		return errors.New("boom")
	}}
	blocking := &stubService{name: "blocking", startFn: func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("want boom, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("every service should be stopped")
	}
}

func TestRunnerCancelledContextIsClean(t *testing.T) {
	blocking := &stubService{name: "blocking", startFn: func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
}

func TestBuildRunnerAPIModeWithoutQueue(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Storage.Driver = storage.DriverMemory
	cfg.CartSession.SecretKey = "secret"

	runner, container, err := BuildRunner(cfg, ModeAll)
	if err != nil {
		t.Fatalf("build runner failed: %v", err)
	}
	defer container.Close()

	names := make([]string, 0, len(runner.services))
	for _, svc := range runner.services {
		names = append(names, svc.Name())
	}
	if len(names) != 2 || names[0] != "http" || names[1] != "cart_sweeper" {
		t.Fatalf("disabled queue should leave http and sweeper, got %v", names)
	}

	if _, _, err := BuildRunner(cfg, ModeWorker); err == nil {
		t.Fatalf("worker mode without queue should fail")
	}
}

func TestBuildRunnerNilConfig(t *testing.T) {
	if _, _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
}

func TestNewHTTPServiceLimitsHeaderRead(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", nil)
	if svc.server.ReadHeaderTimeout != httpReadHeaderTimeout || svc.server.WriteTimeout != 0 {
		t.Fatalf("unexpected timeouts: header=%s write=%s", svc.server.ReadHeaderTimeout, svc.server.WriteTimeout)
	}
}
