package app

import (
	"context"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/logger"
)

const (
	defaultSweepInterval = time.Minute
	defaultIdleTimeout   = 30 * time.Minute
)

// IdleEvictor 可按最近访问时间释放会话的对象
type IdleEvictor interface {
	EvictIdle(before time.Time) int
}

// SweeperService 定期释放空闲购物车
type SweeperService struct {
	name     string
	evictor  IdleEvictor
	interval time.Duration
	idle     time.Duration
	now      func() time.Time
	done     chan struct{}
}

// NewSweeperService 创建空闲会话清理服务
func NewSweeperService(evictor IdleEvictor, interval, idle time.Duration) *SweeperService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &SweeperService{
		name:     "cart_sweeper",
		evictor:  evictor,
		interval: interval,
		idle:     idle,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Name 服务名称
func (s *SweeperService) Name() string {
	if s == nil || s.name == "" {
		return "cart_sweeper"
	}
	return s.name
}

// Start 启动服务，阻塞至 ctx 结束或 Stop
func (s *SweeperService) Start(ctx context.Context) error {
	if s == nil || s.evictor == nil {
		return nil
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce 执行一次清理
func (s *SweeperService) SweepOnce() int {
	evicted := s.evictor.EvictIdle(s.now().Add(-s.idle))
	if evicted > 0 {
		logger.Debugw("cart_sweeper_evicted", "count", evicted, "idle", s.idle.String())
	}
	return evicted
}

// Stop 停止服务
func (s *SweeperService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
