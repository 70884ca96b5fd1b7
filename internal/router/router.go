package router

import (
	"fmt"
	"net/http"

	"github.com/dujiao-next/storefront-cart/internal/cache"
	"github.com/dujiao-next/storefront-cart/internal/config"
	publichandlers "github.com/dujiao-next/storefront-cart/internal/http/handlers/public"
	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	cartHandler := publichandlers.New(c)
	cartMutationRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart", cache.Prefix()),
		WindowSeconds: cfg.Security.CartRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CartRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	rateLimit := RateLimitMiddleware(cache.Client(), cartMutationRule, KeyByCartSession)
	sessionIssueRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:session", cache.Prefix()),
		WindowSeconds: cfg.Security.SessionRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.SessionRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	sessionRateLimit := RateLimitMiddleware(cache.Client(), sessionIssueRule, KeyByIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 会话签发不经过会话中间件，便于区分续期失败
		apiV1.POST("/cart/session", sessionRateLimit, cartHandler.IssueCartSession)

		cart := apiV1.Group("/cart")
		cart.Use(CartSessionMiddleware(c.CartSessionService, cartHandler.CartSessionHeader()))
		{
			cart.GET("", cartHandler.GetCart)
			cart.GET("/count", cartHandler.GetCartCount)
			cart.GET("/events", cartHandler.StreamCartEvents)
			cart.GET("/checkouts", cartHandler.ListCheckoutHandoffs)
			cart.GET("/checkout/:handoff_no", cartHandler.GetCheckoutHandoff)

			cart.POST("/items", rateLimit, cartHandler.AddCartItem)
			cart.PUT("/items", rateLimit, cartHandler.UpdateCartItem)
			cart.DELETE("/items", rateLimit, cartHandler.RemoveCartItem)
			cart.DELETE("", rateLimit, cartHandler.ClearCart)
			cart.POST("/checkout", rateLimit, cartHandler.Checkout)
		}
	}

	// 健康检查
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"storage":         cfg.Storage.Driver,
			"active_sessions": c.CartService.ActiveSessions(),
		})
	})

	return r
}
