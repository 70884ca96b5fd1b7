package models

import (
	"math"
	"strings"
)

const (
	// MaxLineQuantity 单行数量上限，合并与修改都不会超过该值
	// 接口绑定中的 max=9999 与此保持一致
	MaxLineQuantity = 9999
	// MaxUnitPrice 单价上限（最小货币单位）
	MaxUnitPrice int64 = 1_000_000_000_000
)

// ColorVariant 颜色规格
type ColorVariant struct {
	ColorID     string `json:"colorId"`     // 颜色ID（参与行标识）
	ColorName   string `json:"colorName"`   // 颜色名称
	ColorSwatch string `json:"colorSwatch"` // 色块（如 #FF0000）
}

// StorageVariant 容量规格
type StorageVariant struct {
	StorageID   string `json:"storageId"`   // 容量ID（参与行标识）
	StorageName string `json:"storageName"` // 容量名称
}

// CartLineItem 购物车行
// 持久化字段名与前台 localStorage 中的 cart 数组保持一致
type CartLineItem struct {
	ProductID      string         `json:"productId"`
	ProductName    string         `json:"productName"`
	UnitPrice      int64          `json:"unitPrice"` // 最小货币单位，加入时的快照价
	ColorVariant   ColorVariant   `json:"colorVariant"`
	StorageVariant StorageVariant `json:"storageVariant"`
	Quantity       int            `json:"quantity"`
	ImageURL       string         `json:"imageUrl"`
}

// LineIdentity 行标识三元组
type LineIdentity struct {
	ProductID string
	ColorID   string
	StorageID string
}

// NewLineIdentity 构建行标识
func NewLineIdentity(productID, colorID, storageID string) LineIdentity {
	return LineIdentity{
		ProductID: productID,
		ColorID:   colorID,
		StorageID: storageID,
	}
}

// Identity 返回行标识
func (item CartLineItem) Identity() LineIdentity {
	return LineIdentity{
		ProductID: item.ProductID,
		ColorID:   item.ColorVariant.ColorID,
		StorageID: item.StorageVariant.StorageID,
	}
}

// Subtotal 行小计（最小货币单位），溢出时取 math.MaxInt64
func (item CartLineItem) Subtotal() int64 {
	if item.UnitPrice <= 0 || item.Quantity <= 0 {
		return 0
	}
	if item.UnitPrice > math.MaxInt64/int64(item.Quantity) {
		return math.MaxInt64
	}
	return item.UnitPrice * int64(item.Quantity)
}

// CapQuantity 将数量截断到 MaxLineQuantity
func CapQuantity(quantity int) int {
	if quantity > MaxLineQuantity {
		return MaxLineQuantity
	}
	return quantity
}

// MergeQuantity 合并两行数量，结果不超过 MaxLineQuantity
func MergeQuantity(current, delta int) int {
	current, delta = CapQuantity(current), CapQuantity(delta)
	return CapQuantity(current + delta)
}

// AddAmount 金额累加，溢出时取 math.MaxInt64
func AddAmount(total, amount int64) int64 {
	if amount > 0 && total > math.MaxInt64-amount {
		return math.MaxInt64
	}
	return total + amount
}

// String 便于日志输出
func (id LineIdentity) String() string {
	return strings.Join([]string{id.ProductID, id.ColorID, id.StorageID}, "/")
}
