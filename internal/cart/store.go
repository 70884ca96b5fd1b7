package cart

import (
	"sync"

	"github.com/dujiao-next/storefront-cart/internal/models"
)

// Listener 购物车变更监听器，参数为变更后的快照副本
// 监听器内可以读取 Store，但不能同步调用修改操作
type Listener func(snapshot []models.CartLineItem)

type subscription struct {
	id       uint64
	listener Listener
}

// Store 购物车状态容器
// 行唯一性、数量下限与持久化只在这里维护；外部只能通过下列操作修改状态
type Store struct {
	mu          sync.Mutex
	items       []models.CartLineItem
	persistence Persistence

	subs    []subscription
	nextSub uint64

	// 保证监听器按提交顺序收到快照
	notifyMu sync.Mutex
}

// NewStore 创建购物车并从持久化中恢复一次
func NewStore(persistence Persistence) *Store {
	if persistence == nil {
		persistence = NewMemoryPersistence()
	}
	return &Store{
		persistence: persistence,
		// 恢复的数据同样需要满足行唯一约束
		items: normalizeLines(persistence.Load()),
	}
}

// AddItem 加入商品；相同标识的行累加数量，价格等字段保留首次加入的值
func (s *Store) AddItem(candidate models.CartLineItem) {
	if candidate.Quantity <= 0 {
		candidate.Quantity = 1
	}
	candidate.Quantity = models.CapQuantity(candidate.Quantity)
	s.mu.Lock()
	if pos := s.indexOf(candidate.Identity()); pos >= 0 {
		s.items[pos].Quantity = models.MergeQuantity(s.items[pos].Quantity, candidate.Quantity)
	} else {
		s.items = append(s.items, candidate)
	}
	s.commitLocked()
}

// RemoveItem 删除指定行，不存在时不做任何事
func (s *Store) RemoveItem(productID, colorID, storageID string) {
	s.mu.Lock()
	pos := s.indexOf(models.NewLineIdentity(productID, colorID, storageID))
	if pos < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	s.commitLocked()
}

// UpdateQuantity 设置指定行数量；quantity <= 0 时删除该行，超过上限时截断
func (s *Store) UpdateQuantity(productID, colorID, storageID string, quantity int) {
	s.mu.Lock()
	pos := s.indexOf(models.NewLineIdentity(productID, colorID, storageID))
	if pos < 0 {
		s.mu.Unlock()
		return
	}
	if quantity <= 0 {
		s.items = append(s.items[:pos], s.items[pos+1:]...)
	} else {
		s.items[pos].Quantity = models.CapQuantity(quantity)
	}
	s.commitLocked()
}

// Clear 清空购物车并删除持久化槽位
func (s *Store) Clear() {
	s.mu.Lock()
	hadItems := len(s.items) > 0
	s.items = nil
	s.persistence.Clear()
	if !hadItems {
		s.mu.Unlock()
		return
	}
	s.publishLocked(nil)
}

// Count 商品总件数
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Total 合计金额（最小货币单位）
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, item := range s.items {
		total = models.AddAmount(total, item.Subtotal())
	}
	return total
}

// Items 当前快照副本
func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.items)
}

// Subscribe 注册监听器，返回的取消函数可重复调用
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, listener: listener})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscriberCount 当前监听器数量
func (s *Store) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Store) indexOf(id models.LineIdentity) int {
	for i := range s.items {
		if s.items[i].Identity() == id {
			return i
		}
	}
	return -1
}

// commitLocked 写入持久化后通知监听器，调用前须持有 s.mu，返回时已释放
func (s *Store) commitLocked() {
	if len(s.items) == 0 {
		s.items = nil
		s.persistence.Clear()
	} else {
		s.persistence.Save(cloneLines(s.items))
	}
	s.publishLocked(cloneLines(s.items))
}

// publishLocked 调用前须持有 s.mu，返回时已释放
func (s *Store) publishLocked(snapshot []models.CartLineItem) {
	listeners := make([]Listener, 0, len(s.subs))
	for _, sub := range s.subs {
		listeners = append(listeners, sub.listener)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, l := range listeners {
		l(cloneLines(snapshot))
	}
}
