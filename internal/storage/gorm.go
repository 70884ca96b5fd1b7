package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend 基于 cart_slots 表的存储（sqlite / postgres）
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend 创建数据库存储
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// Get 读取槽位
func (g *GormBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var slot models.CartSlot
	err := g.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(slot.Value), nil
}

// Set 写入槽位（按 key upsert）
func (g *GormBackend) Set(ctx context.Context, key string, value []byte) error {
	slot := models.CartSlot{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}

// Delete 删除槽位
func (g *GormBackend) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&models.CartSlot{}).Error
}
