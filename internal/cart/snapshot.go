package cart

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/dujiao-next/storefront-cart/internal/models"
)

// ErrSnapshotInvalid 持久化内容无法解析为购物车
var ErrSnapshotInvalid = errors.New("cart: invalid snapshot")

// EncodeSnapshot 序列化为 JSON 数组
func EncodeSnapshot(items []models.CartLineItem) ([]byte, error) {
	if items == nil {
		items = []models.CartLineItem{}
	}
	return json.Marshal(items)
}

// DecodeSnapshot 解析持久化内容
// 数量 <= 0 的行被丢弃，重复标识的行合并数量，超出上限的数量被截断
func DecodeSnapshot(data []byte) ([]models.CartLineItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrSnapshotInvalid
	}
	var raw []models.CartLineItem
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.Join(ErrSnapshotInvalid, err)
	}
	return normalizeLines(raw), nil
}

func normalizeLines(raw []models.CartLineItem) []models.CartLineItem {
	items := make([]models.CartLineItem, 0, len(raw))
	index := make(map[models.LineIdentity]int, len(raw))
	for _, item := range raw {
		if item.Quantity <= 0 {
			continue
		}
		id := item.Identity()
		if pos, ok := index[id]; ok {
			items[pos].Quantity = models.MergeQuantity(items[pos].Quantity, item.Quantity)
			continue
		}
		item.Quantity = models.CapQuantity(item.Quantity)
		index[id] = len(items)
		items = append(items, item)
	}
	return items
}

func cloneLines(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items))
	copy(out, items)
	return out
}
