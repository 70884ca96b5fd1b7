package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":          "请求参数错误",
		"error.unauthorized":         "未授权",
		"error.cart_session_invalid": "购物车会话无效或已过期",
		"error.cart_item_invalid":    "购物车商品参数无效",
		"error.cart_empty":           "购物车为空",
		"error.checkout_unavailable": "结算服务暂不可用",
		"error.rate_limited":         "请求过于频繁，请 %d 秒后再试",
		"error.not_found":            "资源不存在",
		"error.internal":             "服务器内部错误",
		"cart.cleared":               "购物车已清空",
		"cart.checkout_accepted":     "结算请求已提交，单号 %s",
	},
	LocaleTW: {
		"error.bad_request":          "請求參數錯誤",
		"error.unauthorized":         "未授權",
		"error.cart_session_invalid": "購物車會話無效或已過期",
		"error.cart_item_invalid":    "購物車商品參數無效",
		"error.cart_empty":           "購物車為空",
		"error.checkout_unavailable": "結算服務暫不可用",
		"error.rate_limited":         "請求過於頻繁，請 %d 秒後再試",
		"error.not_found":            "資源不存在",
		"error.internal":             "伺服器內部錯誤",
		"cart.cleared":               "購物車已清空",
		"cart.checkout_accepted":     "結算請求已提交，單號 %s",
	},
	LocaleEN: {
		"error.bad_request":          "Invalid request parameters",
		"error.unauthorized":         "Unauthorized",
		"error.cart_session_invalid": "Cart session is invalid or expired",
		"error.cart_item_invalid":    "Invalid cart item",
		"error.cart_empty":           "Cart is empty",
		"error.checkout_unavailable": "Checkout is temporarily unavailable",
		"error.rate_limited":         "Too many requests, retry in %d seconds",
		"error.not_found":            "Not found",
		"error.internal":             "Internal server error",
		"cart.cleared":               "Cart cleared",
		"cart.checkout_accepted":     "Checkout submitted, handoff %s",
	},
}
