package constants

// 队列与任务常量
const (
	QueueDefault       = "default"
	QueueCritical      = "critical"
	TaskCartCheckout   = "cart:checkout_handoff"
	CheckoutMaxRetry   = 10
	CheckoutTaskMaxAge = 24 * 3600 // 秒
)

// 结算交接状态常量
const (
	CheckoutHandoffStatusReceived = "received"
)

// 购物车会话常量
const (
	CartSessionIssuer     = "storefront-cart"
	CartSessionHeader     = "X-Cart-Token"
	CartSessionQueryParam = "cart_token"
)

// 币种常量
const (
	CurrencyDefault = "VND"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}
