package public

import "github.com/dujiao-next/storefront-cart/internal/provider"

// Handler 前台购物车接口处理器
// 说明：该处理器仅服务游客购物车会话。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
