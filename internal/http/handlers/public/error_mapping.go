package public

import (
	"errors"

	"github.com/dujiao-next/storefront-cart/internal/http/response"
	"github.com/dujiao-next/storefront-cart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartSessionRequired, code: response.CodeUnauthorized, key: "error.cart_session_invalid"},
	{target: service.ErrCartSessionInvalid, code: response.CodeUnauthorized, key: "error.cart_session_invalid"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
}

var cartCheckoutExtraErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeConflict, key: "error.cart_empty"},
	{target: service.ErrCheckoutUnavailable, code: response.CodeUnavailable, key: "error.checkout_unavailable"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.internal")
}

func respondCartCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartCheckoutExtraErrorRules), response.CodeInternal, "error.checkout_unavailable")
}
