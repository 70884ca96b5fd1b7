package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DefaultMoneyScale 默认小数位（分）
const DefaultMoneyScale int32 = 2

// Money 展示用金额
// Scale 为 0 时按原始精度输出（如 VND 等无辅币货币）
type Money struct {
	decimal.Decimal
	Scale int32
}

// NewMoneyFromMinor 从最小货币单位创建金额，例如 scale=2 时 1999 -> 19.99
func NewMoneyFromMinor(amount int64, scale int32) Money {
	if scale < 0 {
		scale = DefaultMoneyScale
	}
	return Money{Decimal: decimal.New(amount, -scale), Scale: scale}
}

// WithScale 设置展示小数位
// 从数据库或 JSON 读回的金额不携带小数位，展示前需重新指定
func (m Money) WithScale(scale int32) Money {
	if scale < 0 {
		scale = DefaultMoneyScale
	}
	m.Scale = scale
	return m
}

// MarshalJSON 统一输出固定小数位的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	return m.Decimal.Scan(value)
}

// String 返回固定小数位格式
func (m Money) String() string {
	if m.Scale > 0 {
		return m.Decimal.StringFixed(m.Scale)
	}
	return m.Decimal.String()
}
