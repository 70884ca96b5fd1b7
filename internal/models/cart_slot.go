package models

import "time"

// CartSlot 购物车持久化槽位（键值）
type CartSlot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;type:varchar(191)" json:"key"` // 槽位键，如 cart:<session>
	Value     string    `gorm:"type:text;not null" json:"value"`         // 序列化后的购物车 JSON 数组
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                 // 更新时间
}

// TableName 指定表名
func (CartSlot) TableName() string {
	return "cart_slots"
}
