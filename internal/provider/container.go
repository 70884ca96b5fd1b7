package provider

import (
	"github.com/dujiao-next/storefront-cart/internal/cache"
	"github.com/dujiao-next/storefront-cart/internal/config"
	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/queue"
	"github.com/dujiao-next/storefront-cart/internal/repository"
	"github.com/dujiao-next/storefront-cart/internal/service"
	"github.com/dujiao-next/storefront-cart/internal/storage"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	SlotBackend storage.Backend

	// Repositories
	HandoffRepo repository.CheckoutHandoffRepository

	// Services
	CartService        *service.CartService
	CartSessionService *service.CartSessionService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化存储
	c.initStorage(models.DB)

	// 2. 初始化 Repositories
	c.initRepositories(models.DB)

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initStorage(db *gorm.DB) {
	backend, err := storage.New(storage.Options{
		Driver:   c.Config.Storage.Driver,
		Dir:      c.Config.Storage.Dir,
		Prefix:   cache.BuildKey("cart_slot"),
		RedisTTL: c.Config.Storage.RedisTTL(),
		DB:       db,
		Redis:    cache.Client(),
	})
	if err != nil {
		// 槽位存储不可用时退回内存，购物车仍可用但不跨进程保留
		logger.Errorw("provider_init_slot_storage_failed",
			"driver", c.Config.Storage.Driver,
			"error", err,
			"fallback", storage.DriverMemory,
		)
		backend = storage.NewMemoryBackend()
	}
	c.SlotBackend = backend
}

func (c *Container) initRepositories(db *gorm.DB) {
	if db == nil {
		return
	}
	c.HandoffRepo = repository.NewCheckoutHandoffRepository(db)
}

func (c *Container) initServices() {
	var enqueuer service.CheckoutEnqueuer
	if c.QueueClient != nil {
		enqueuer = c.QueueClient
	}
	c.CartService = service.NewCartService(service.CartServiceOptions{
		Backend:        c.SlotBackend,
		StorageTimeout: c.Config.Storage.Timeout(),
		PriceScale:     c.Config.Cart.PriceScale,
		Currency:       c.Config.Cart.Currency,
		Queue:          enqueuer,
	})
	c.CartSessionService = service.NewCartSessionService(c.Config.CartSession)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
