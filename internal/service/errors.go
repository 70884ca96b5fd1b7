package service

import "errors"

var (
	// ErrCartSessionInvalid 购物车会话令牌无效
	ErrCartSessionInvalid = errors.New("cart session invalid")
	// ErrCartSessionRequired 未提供购物车会话
	ErrCartSessionRequired = errors.New("cart session required")
	// ErrInvalidCartItem 购物车行参数无效
	ErrInvalidCartItem = errors.New("invalid cart item")
	// ErrCartEmpty 购物车为空，无法结算
	ErrCartEmpty = errors.New("cart is empty")
	// ErrCheckoutUnavailable 结算队列不可用
	ErrCheckoutUnavailable = errors.New("checkout unavailable")
)
