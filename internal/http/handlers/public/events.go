package public

import (
	"io"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	cartEventName             = "cart"
	cartEventPingName         = "ping"
	cartEventBuffer           = 4
	defaultCartEventHeartbeat = 25 * time.Second
)

// StreamCartEvents 以 SSE 推送购物车快照
// 连接建立后先推送一次当前快照，之后每次变更推送一次
func (h *Handler) StreamCartEvents(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	events := make(chan []models.CartLineItem, cartEventBuffer)
	unsubscribe, err := h.CartService.Subscribe(sessionID, func(snapshot []models.CartLineItem) {
		offerLatest(events, snapshot)
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	defer unsubscribe()

	initial, err := h.CartService.View(sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}

	heartbeat := defaultCartEventHeartbeat
	if h.Config != nil && h.Config.Cart.EventHeartbeatSecond > 0 {
		heartbeat = time.Duration(h.Config.Cart.EventHeartbeatSecond) * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	log := requestLog(c)
	log.Debugw("cart_events_subscribed", "session_id", sessionID)
	defer log.Debugw("cart_events_unsubscribed", "session_id", sessionID)

	c.SSEvent(cartEventName, initial)
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-reqCtx.Done():
			return false
		case snapshot := <-events:
			c.SSEvent(cartEventName, h.CartService.BuildView(snapshot))
			return true
		case now := <-ticker.C:
			c.SSEvent(cartEventPingName, now.Unix())
			return true
		}
	})
}

// offerLatest 非阻塞投递，缓冲满时丢弃最旧的快照
// 监听器在通知锁内执行，不能阻塞
func offerLatest(events chan []models.CartLineItem, snapshot []models.CartLineItem) {
	for {
		select {
		case events <- snapshot:
			return
		default:
		}
		select {
		case <-events:
		default:
		}
	}
}
