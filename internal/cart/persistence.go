package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/storage"

	"go.uber.org/zap"
)

// DefaultSlotKey 单购物车场景的槽位名
const DefaultSlotKey = "cart"

const defaultSlotTimeout = time.Second

// Persistence 购物车持久化能力
// 所有方法均为尽力而为：失败只记录日志，不向调用方返回错误
type Persistence interface {
	Load() []models.CartLineItem
	Save(items []models.CartLineItem)
	Clear()
}

// SlotPersistence 将购物车写入存储后端的单个槽位
type SlotPersistence struct {
	backend storage.Backend
	key     string
	timeout time.Duration
	log     *zap.SugaredLogger
}

// SlotOption 槽位可选项
type SlotOption func(*SlotPersistence)

// WithSlotTimeout 设置单次存储操作超时
func WithSlotTimeout(timeout time.Duration) SlotOption {
	return func(p *SlotPersistence) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithSlotLogger 设置日志实例
func WithSlotLogger(log *zap.SugaredLogger) SlotOption {
	return func(p *SlotPersistence) {
		if log != nil {
			p.log = log
		}
	}
}

// NewSlotPersistence 创建槽位持久化
func NewSlotPersistence(backend storage.Backend, key string, opts ...SlotOption) *SlotPersistence {
	if key == "" {
		key = DefaultSlotKey
	}
	p := &SlotPersistence{
		backend: backend,
		key:     key,
		timeout: defaultSlotTimeout,
		log:     logger.S(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("slot", key)
	return p
}

// Key 槽位名
func (p *SlotPersistence) Key() string {
	return p.key
}

// Load 读取购物车；槽位缺失返回空，内容损坏时清除槽位并返回空
func (p *SlotPersistence) Load() []models.CartLineItem {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	data, err := p.backend.Get(ctx, p.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		p.log.Warnw("cart_slot_load_failed", "error", err)
		return nil
	}
	items, err := DecodeSnapshot(data)
	if err != nil {
		p.log.Warnw("cart_slot_corrupt_purged", "error", err, "size", len(data))
		if delErr := p.backend.Delete(ctx, p.key); delErr != nil {
			p.log.Warnw("cart_slot_purge_failed", "error", delErr)
		}
		return nil
	}
	return items
}

// Save 写入购物车
func (p *SlotPersistence) Save(items []models.CartLineItem) {
	payload, err := EncodeSnapshot(items)
	if err != nil {
		p.log.Warnw("cart_slot_encode_failed", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.backend.Set(ctx, p.key, payload); err != nil {
		p.log.Warnw("cart_slot_save_failed", "error", err, "lines", len(items))
	}
}

// Clear 删除槽位
func (p *SlotPersistence) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.backend.Delete(ctx, p.key); err != nil {
		p.log.Warnw("cart_slot_clear_failed", "error", err)
	}
}

// MemoryPersistence 内存持久化，测试与嵌入场景使用
type MemoryPersistence struct {
	mu    sync.Mutex
	items []models.CartLineItem
	saved bool
}

// NewMemoryPersistence 创建内存持久化
func NewMemoryPersistence(initial ...models.CartLineItem) *MemoryPersistence {
	p := &MemoryPersistence{}
	if len(initial) > 0 {
		p.items = cloneLines(initial)
		p.saved = true
	}
	return p
}

// Load 读取
func (p *MemoryPersistence) Load() []models.CartLineItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.saved {
		return nil
	}
	return cloneLines(p.items)
}

// Save 写入
func (p *MemoryPersistence) Save(items []models.CartLineItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = cloneLines(items)
	p.saved = true
}

// Clear 清除
func (p *MemoryPersistence) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
	p.saved = false
}

// Stored 槽位是否存在
func (p *MemoryPersistence) Stored() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved
}
