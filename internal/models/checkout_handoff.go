package models

import "time"

// CheckoutHandoff 购物车结算移交记录
// 由 worker 写入，供下游订单系统拉取
type CheckoutHandoff struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                       // 主键
	HandoffNo   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"handoff_no"`    // 移交单号
	SessionID   string    `gorm:"type:varchar(64);index;not null" json:"session_id"`          // 购物车会话ID
	Items       string    `gorm:"type:text;not null" json:"items"`                            // 行项目快照（JSON 数组）
	ItemCount   int       `gorm:"not null" json:"item_count"`                                 // 商品总件数
	TotalAmount Money     `gorm:"type:decimal(20,2);not null" json:"total_amount"`            // 合计金额
	Status      string    `gorm:"type:varchar(20);not null;default:'received'" json:"status"` // 状态
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
}

// TableName 指定表名
func (CheckoutHandoff) TableName() string {
	return "checkout_handoffs"
}
