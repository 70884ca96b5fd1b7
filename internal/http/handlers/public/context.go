package public

import (
	handlershared "github.com/dujiao-next/storefront-cart/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getCartSessionID(c *gin.Context) (string, bool) {
	return handlershared.GetCartSessionID(c)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
