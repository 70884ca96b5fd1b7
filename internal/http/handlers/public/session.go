package public

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/constants"
	"github.com/dujiao-next/storefront-cart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartSessionResponse 会话令牌响应
type CartSessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Header    string    `json:"header"`
}

// CartSessionHeader 返回会话令牌使用的请求头
func (h *Handler) CartSessionHeader() string {
	if h == nil || h.Config == nil {
		return constants.CartSessionHeader
	}
	if header := strings.TrimSpace(h.Config.CartSession.Header); header != "" {
		return header
	}
	return constants.CartSessionHeader
}

// IssueCartSession 签发或续期购物车会话
// 携带有效令牌时续期同一会话，令牌无效时返回 401，未携带时创建新会话
func (h *Handler) IssueCartSession(c *gin.Context) {
	header := h.CartSessionHeader()
	sessionID := ""
	if token := strings.TrimSpace(c.GetHeader(header)); token != "" {
		claims, err := h.CartSessionService.Parse(token)
		if err != nil {
			respondError(c, response.CodeUnauthorized, "error.cart_session_invalid", nil)
			return
		}
		sessionID = claims.SessionID
	}
	token, sessionID, expiresAt, err := h.CartSessionService.Issue(sessionID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	c.Header(header, token)
	response.Success(c, CartSessionResponse{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
		Header:    header,
	})
}
