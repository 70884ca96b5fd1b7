package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/cart"
	"github.com/dujiao-next/storefront-cart/internal/constants"
	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/queue"
	"github.com/dujiao-next/storefront-cart/internal/storage"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/singleflight"
)

// CheckoutEnqueuer 结算移交投递
type CheckoutEnqueuer interface {
	EnqueueCartCheckout(payload queue.CartCheckoutPayload, opts ...asynq.Option) error
}

// CartServiceOptions 购物车服务配置
type CartServiceOptions struct {
	Backend        storage.Backend
	StorageTimeout time.Duration
	PriceScale     int32
	Currency       string
	Queue          CheckoutEnqueuer
	Now            func() time.Time
}

// CartView 购物车快照视图（用于响应）
type CartView struct {
	Items     []models.CartLineItem `json:"items"`
	Count     int                   `json:"count"`
	Total     int64                 `json:"total"`
	TotalText models.Money          `json:"total_text"`
	Currency  string                `json:"currency"`
}

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	ProductID      string
	ProductName    string
	UnitPrice      int64
	ColorVariant   models.ColorVariant
	StorageVariant models.StorageVariant
	Quantity       int
	ImageURL       string
}

// UpdateCartItemInput 修改数量输入
type UpdateCartItemInput struct {
	ProductID string
	ColorID   string
	StorageID string
	Quantity  int
}

// CheckoutResult 结算移交结果
type CheckoutResult struct {
	HandoffNo   string       `json:"handoff_no"`
	ItemCount   int          `json:"item_count"`
	TotalAmount models.Money `json:"total_amount"`
}

type cartEntry struct {
	store    *cart.Store
	lastSeen time.Time
}

// CartService 按会话管理购物车
type CartService struct {
	backend    storage.Backend
	timeout    time.Duration
	priceScale int32
	currency   string
	queue      CheckoutEnqueuer
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*cartEntry
	sfg     singleflight.Group
}

// NewCartService 创建购物车服务
func NewCartService(opts CartServiceOptions) *CartService {
	backend := opts.Backend
	if backend == nil {
		backend = storage.NewMemoryBackend()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	currency := strings.TrimSpace(opts.Currency)
	if currency == "" {
		currency = constants.CurrencyDefault
	}
	scale := opts.PriceScale
	if scale < 0 {
		scale = 0
	}
	return &CartService{
		backend:    backend,
		timeout:    opts.StorageTimeout,
		priceScale: scale,
		currency:   currency,
		queue:      opts.Queue,
		now:        now,
		entries:    make(map[string]*cartEntry),
	}
}

// SlotKey 会话对应的存储槽位
func SlotKey(sessionID string) string {
	return cart.DefaultSlotKey + ":" + sessionID
}

// Store 获取会话购物车，首次访问时从存储恢复
func (s *CartService) Store(sessionID string) (*cart.Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrCartSessionRequired
	}
	if store := s.lookup(sessionID); store != nil {
		return store, nil
	}
	// 同一会话并发首访只恢复一次
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		if store := s.lookup(sessionID); store != nil {
			return store, nil
		}
		opts := []cart.SlotOption{
			cart.WithSlotLogger(logger.SW("session_id", sessionID)),
		}
		if s.timeout > 0 {
			opts = append(opts, cart.WithSlotTimeout(s.timeout))
		}
		store := cart.NewStore(cart.NewSlotPersistence(s.backend, SlotKey(sessionID), opts...))

		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.entries[sessionID]; ok {
			existing.lastSeen = s.now()
			return existing.store, nil
		}
		s.entries[sessionID] = &cartEntry{store: store, lastSeen: s.now()}
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Store), nil
}

func (s *CartService) lookup(sessionID string) *cart.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	entry.lastSeen = s.now()
	return entry.store
}

// View 获取购物车快照
func (s *CartService) View(sessionID string) (*CartView, error) {
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(store.Items()), nil
}

// Count 获取购物车件数
func (s *CartService) Count(sessionID string) (int, error) {
	store, err := s.Store(sessionID)
	if err != nil {
		return 0, err
	}
	return store.Count(), nil
}

// AddItem 加入购物车，同规格合并数量
func (s *CartService) AddItem(sessionID string, input AddCartItemInput) (*CartView, error) {
	if err := validateAddInput(input); err != nil {
		return nil, err
	}
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	store.AddItem(models.CartLineItem{
		ProductID:      strings.TrimSpace(input.ProductID),
		ProductName:    strings.TrimSpace(input.ProductName),
		UnitPrice:      input.UnitPrice,
		ColorVariant:   input.ColorVariant,
		StorageVariant: input.StorageVariant,
		Quantity:       input.Quantity,
		ImageURL:       strings.TrimSpace(input.ImageURL),
	})
	return s.buildView(store.Items()), nil
}

// UpdateQuantity 修改行数量，数量小于等于 0 时移除该行
func (s *CartService) UpdateQuantity(sessionID string, input UpdateCartItemInput) (*CartView, error) {
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, ErrInvalidCartItem
	}
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	store.UpdateQuantity(strings.TrimSpace(input.ProductID), input.ColorID, input.StorageID, input.Quantity)
	return s.buildView(store.Items()), nil
}

// RemoveItem 移除行
func (s *CartService) RemoveItem(sessionID string, id models.LineIdentity) (*CartView, error) {
	if strings.TrimSpace(id.ProductID) == "" {
		return nil, ErrInvalidCartItem
	}
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	store.RemoveItem(strings.TrimSpace(id.ProductID), id.ColorID, id.StorageID)
	return s.buildView(store.Items()), nil
}

// Clear 清空购物车
func (s *CartService) Clear(sessionID string) (*CartView, error) {
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	store.Clear()
	return s.buildView(store.Items()), nil
}

// Subscribe 订阅购物车变更，返回取消函数
func (s *CartService) Subscribe(sessionID string, listener cart.Listener) (func(), error) {
	if listener == nil {
		return nil, errors.New("listener is nil")
	}
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	return store.Subscribe(listener), nil
}

// Checkout 将购物车移交给下游订单系统，投递成功后清空购物车
func (s *CartService) Checkout(ctx context.Context, sessionID string) (*CheckoutResult, error) {
	store, err := s.Store(sessionID)
	if err != nil {
		return nil, err
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	items := store.Items()
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}
	if s.queue == nil {
		return nil, ErrCheckoutUnavailable
	}
	view := s.buildView(items)
	payload := queue.CartCheckoutPayload{
		HandoffNo:   uuid.NewString(),
		SessionID:   strings.TrimSpace(sessionID),
		Items:       items,
		ItemCount:   view.Count,
		TotalAmount: view.TotalText,
	}
	if err := s.queue.EnqueueCartCheckout(payload); err != nil {
		if errors.Is(err, queue.ErrQueueDisabled) {
			return nil, ErrCheckoutUnavailable
		}
		return nil, fmt.Errorf("enqueue cart checkout: %w", err)
	}
	store.Clear()
	logger.Infow("cart_checkout_enqueued",
		"session_id", payload.SessionID,
		"handoff_no", payload.HandoffNo,
		"item_count", payload.ItemCount,
		"total", payload.TotalAmount.String(),
	)
	return &CheckoutResult{
		HandoffNo:   payload.HandoffNo,
		ItemCount:   payload.ItemCount,
		TotalAmount: payload.TotalAmount,
	}, nil
}

// EvictIdle 释放最近访问早于 before 且无订阅的会话，返回释放数量
// 释放只影响内存，槽位内容保留，下次访问时重新恢复
func (s *CartService) EvictIdle(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, entry := range s.entries {
		if entry.lastSeen.After(before) || entry.store.SubscriberCount() > 0 {
			continue
		}
		delete(s.entries, id)
		evicted++
	}
	return evicted
}

// ActiveSessions 当前驻留内存的会话数
func (s *CartService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Currency 展示币种
func (s *CartService) Currency() string {
	return s.currency
}

// BuildView 基于任意快照构建视图
func (s *CartService) BuildView(items []models.CartLineItem) *CartView {
	return s.buildView(items)
}

func (s *CartService) buildView(items []models.CartLineItem) *CartView {
	count := 0
	var total int64
	for _, item := range items {
		count += item.Quantity
		total = models.AddAmount(total, item.Subtotal())
	}
	if items == nil {
		items = []models.CartLineItem{}
	}
	return &CartView{
		Items:     items,
		Count:     count,
		Total:     total,
		TotalText: models.NewMoneyFromMinor(total, s.priceScale),
		Currency:  s.currency,
	}
}

func validateAddInput(input AddCartItemInput) error {
	if strings.TrimSpace(input.ProductID) == "" {
		return ErrInvalidCartItem
	}
	if input.UnitPrice < 0 || input.UnitPrice > models.MaxUnitPrice {
		return ErrInvalidCartItem
	}
	return nil
}
