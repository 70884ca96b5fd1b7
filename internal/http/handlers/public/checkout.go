package public

import (
	"strings"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/cache"
	handlershared "github.com/dujiao-next/storefront-cart/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront-cart/internal/http/response"
	"github.com/dujiao-next/storefront-cart/internal/i18n"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/repository"

	"github.com/gin-gonic/gin"
)

const checkoutHandoffCacheTTL = 30 * time.Second

// CheckoutHandoffView 移交记录响应
type CheckoutHandoffView struct {
	HandoffNo   string       `json:"handoff_no"`
	Status      string       `json:"status"`
	ItemCount   int          `json:"item_count"`
	TotalAmount models.Money `json:"total_amount"`
	CreatedAt   time.Time    `json:"created_at"`
}

type cachedCheckoutHandoff struct {
	SessionID string              `json:"session_id"`
	View      CheckoutHandoffView `json:"view"`
}

// Checkout 提交结算移交
func (h *Handler) Checkout(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	result, err := h.CartService.Checkout(c.Request.Context(), sessionID)
	if err != nil {
		respondCartCheckoutError(c, err)
		return
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "cart.checkout_accepted", result.HandoffNo)
	response.SuccessWithMsg(c, msg, result)
}

// GetCheckoutHandoff 查询移交记录状态，仅限本会话
func (h *Handler) GetCheckoutHandoff(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	handoffNo := strings.TrimSpace(c.Param("handoff_no"))
	if handoffNo == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if h.HandoffRepo == nil {
		respondError(c, response.CodeUnavailable, "error.checkout_unavailable", nil)
		return
	}

	ctx := c.Request.Context()
	cacheKey := cache.CheckoutHandoffKey(handoffNo)
	var cached cachedCheckoutHandoff
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		if cached.SessionID != sessionID {
			respondError(c, response.CodeNotFound, "error.not_found", nil)
			return
		}
		cached.View.TotalAmount = cached.View.TotalAmount.WithScale(h.priceScale())
		response.Success(c, cached.View)
		return
	}

	handoff, err := h.HandoffRepo.GetByHandoffNo(handoffNo)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	// 尚未被 worker 落库或不属于本会话时均按不存在处理
	if handoff == nil || handoff.SessionID != sessionID {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	view := h.checkoutHandoffView(handoff)
	entry := cachedCheckoutHandoff{SessionID: handoff.SessionID, View: view}
	if err := cache.SetJSON(ctx, cacheKey, entry, checkoutHandoffCacheTTL); err != nil {
		requestLog(c).Debugw("checkout_handoff_cache_set_failed", "handoff_no", handoffNo, "error", err)
	}
	response.Success(c, view)
}

// ListCheckoutHandoffs 分页查询本会话的移交记录
func (h *Handler) ListCheckoutHandoffs(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	var query handlershared.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if h.HandoffRepo == nil {
		respondError(c, response.CodeUnavailable, "error.checkout_unavailable", nil)
		return
	}
	page, pageSize := query.Normalize()
	handoffs, total, err := h.HandoffRepo.List(repository.CheckoutHandoffListFilter{
		Page:      page,
		PageSize:  pageSize,
		SessionID: sessionID,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	views := make([]CheckoutHandoffView, 0, len(handoffs))
	for i := range handoffs {
		views = append(views, h.checkoutHandoffView(&handoffs[i]))
	}
	response.SuccessWithPage(c, views, response.NewPagination(page, pageSize, total))
}

func (h *Handler) checkoutHandoffView(handoff *models.CheckoutHandoff) CheckoutHandoffView {
	return CheckoutHandoffView{
		HandoffNo:   handoff.HandoffNo,
		Status:      handoff.Status,
		ItemCount:   handoff.ItemCount,
		TotalAmount: handoff.TotalAmount.WithScale(h.priceScale()),
		CreatedAt:   handoff.CreatedAt,
	}
}

func (h *Handler) priceScale() int32 {
	if h.Config == nil || h.Config.Cart.PriceScale < 0 {
		return 0
	}
	return h.Config.Cart.PriceScale
}
