package public

import (
	"strings"

	"github.com/dujiao-next/storefront-cart/internal/http/response"
	"github.com/dujiao-next/storefront-cart/internal/i18n"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	ProductID      string                `json:"productId" binding:"required"`
	ProductName    string                `json:"productName"`
	UnitPrice      int64                 `json:"unitPrice" binding:"gte=0,lte=1000000000000"`
	ColorVariant   models.ColorVariant   `json:"colorVariant"`
	StorageVariant models.StorageVariant `json:"storageVariant"`
	Quantity       int                   `json:"quantity" binding:"lte=9999"` // 小于等于 0 时按 1 处理
	ImageURL       string                `json:"imageUrl"`
}

// CartQuantityRequest 修改数量请求
type CartQuantityRequest struct {
	ProductID string `json:"productId" binding:"required"`
	ColorID   string `json:"colorId"`
	StorageID string `json:"storageId"`
	Quantity  *int   `json:"quantity" binding:"required,lte=9999"` // 小于等于 0 时移除该行
}

// CartLineQuery 行标识查询参数
type CartLineQuery struct {
	ProductID string `form:"product_id" binding:"required"`
	ColorID   string `form:"color_id"`
	StorageID string `form:"storage_id"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	view, err := h.CartService.View(sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// GetCartCount 获取购物车件数
func (h *Handler) GetCartCount(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	count, err := h.CartService.Count(sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}
	view, err := h.CartService.AddItem(sessionID, service.AddCartItemInput{
		ProductID:      req.ProductID,
		ProductName:    req.ProductName,
		UnitPrice:      req.UnitPrice,
		ColorVariant:   req.ColorVariant,
		StorageVariant: req.StorageVariant,
		Quantity:       req.Quantity,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.UpdateQuantity(sessionID, service.UpdateCartItemInput{
		ProductID: req.ProductID,
		ColorID:   req.ColorID,
		StorageID: req.StorageID,
		Quantity:  *req.Quantity,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 移除购物车行
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	var query CartLineQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.RemoveItem(sessionID, models.NewLineIdentity(query.ProductID, query.ColorID, query.StorageID))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, ok := getCartSessionID(c)
	if !ok {
		return
	}
	view, err := h.CartService.Clear(sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "cart.cleared"), view)
}
