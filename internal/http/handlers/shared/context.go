package shared

import (
	"strings"

	"github.com/dujiao-next/storefront-cart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartSessionIDKey 中间件写入的购物车会话键
const CartSessionIDKey = "cart_session_id"

// GetContextStringWithKeys 从上下文读取非空字符串并统一处理错误响应。
func GetContextStringWithKeys(c *gin.Context, key, typeInvalidKey string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	v, ok := value.(string)
	if !ok {
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return "", false
	}
	if strings.TrimSpace(v) == "" {
		RespondError(c, response.CodeUnauthorized, "error.cart_session_invalid", nil)
		return "", false
	}
	return v, true
}

// GetCartSessionID 读取当前请求的购物车会话
func GetCartSessionID(c *gin.Context) (string, bool) {
	return GetContextStringWithKeys(c, CartSessionIDKey, "error.internal")
}
